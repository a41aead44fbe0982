package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	RowsReceived     int `json:"rows_received"`
	SessionsReceived int `json:"sessions_received"`
	WorkoutsInserted int `json:"workouts_inserted"`

	SetsReceived int   `json:"sets_received"`
	SetsInserted int64 `json:"sets_inserted"`
	SetsSkipped  int64 `json:"sets_skipped"`

	RecordsSet int `json:"records_set"`

	Message string `json:"message,omitempty"`
}
