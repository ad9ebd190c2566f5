package store

// Run queries
const (
	queryInsertRun = `
		INSERT INTO runs (id, test_name, target, iteration, outcome, message, log_dir, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetRun = `
		SELECT id, test_name, target, iteration, outcome, message, log_dir, started_at, finished_at
		FROM runs WHERE id = ?`
)
