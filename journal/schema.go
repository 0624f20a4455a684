package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	event TEXT NOT NULL,
	order_id TEXT NOT NULL,
	label TEXT NOT NULL,
	instrument TEXT NOT NULL,
	command TEXT NOT NULL,
	lots REAL NOT NULL,
	open_price REAL NOT NULL,
	close_price REAL NOT NULL,
	pips REAL NOT NULL,
	profit_loss REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_label ON orders(label);
CREATE INDEX IF NOT EXISTS idx_orders_time ON orders(time);
`
