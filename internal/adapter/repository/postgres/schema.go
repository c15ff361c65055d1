package postgres

import "context"

// schema bootstraps the marketplace tables. Amount columns are DECIMAL,
// never floats. Bids are scoped to their task and cascade with it, so
// deleting an Open task takes its pending bids along.
const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id UUID PRIMARY KEY,
	owner_id UUID NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	category TEXT NOT NULL,
	location TEXT NOT NULL,
	budget DECIMAL NOT NULL,
	status TEXT NOT NULL,
	assigned_tasker_id UUID,
	assigned_tasker_name TEXT,
	agreed_price DECIMAL,
	bid_count INTEGER NOT NULL DEFAULT 0,
	payment_status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks (status);
CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks (owner_id);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks (assigned_tasker_id);

CREATE TABLE IF NOT EXISTS bids (
	id UUID PRIMARY KEY,
	task_id UUID NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	tasker_id UUID NOT NULL,
	tasker_name TEXT NOT NULL,
	amount DECIMAL NOT NULL,
	proposal TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bids_task ON bids (task_id);

CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	task_id UUID NOT NULL,
	amount DECIMAL NOT NULL,
	method TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_task ON transactions (task_id);

CREATE TABLE IF NOT EXISTS wallets (
	tasker_id UUID PRIMARY KEY,
	balance DECIMAL NOT NULL DEFAULT 0,
	lifetime_earnings DECIMAL NOT NULL DEFAULT 0,
	completed_jobs INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
	id UUID PRIMARY KEY,
	task_id UUID NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	sender_id UUID NOT NULL,
	sender_name TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_task ON messages (task_id);

CREATE TABLE IF NOT EXISTS notifications (
	id UUID PRIMARY KEY,
	recipient_id UUID NOT NULL,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	related_id UUID NOT NULL,
	read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications (recipient_id);
`

// EnsureSchema creates the marketplace tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
