package news

import "net/http"

// Register mounts the news, sentiment and report routes.
// maxLimit caps ?limit; pass the aggregator's MaxArticles. digester may be nil.
func Register(mux *http.ServeMux, agg Aggregator, digester Digester, watchlist Watchlist, maxLimit int) {
	mux.Handle("GET /news/{symbol}", NewsHandler{Agg: agg, Digester: digester, MaxLimit: maxLimit})
	mux.Handle("GET /sentiment/{symbol}", SentimentHandler{Agg: agg})
	mux.Handle("GET /users/{id}/report", ReportHandler{Agg: agg, Watchlist: watchlist, MaxLimit: maxLimit})
}
