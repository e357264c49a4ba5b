package explorer

// Health is the body of GET /healthz.
type Health struct {
	Status     string `json:"status"`
	Generation uint64 `json:"generation"`
	Rows       int    `json:"rows"`
	Sessions   int    `json:"sessions"`
	LoadedAt   string `json:"loaded_at"`
}
