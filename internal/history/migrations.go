package history

const schemaV1 = `
CREATE TABLE IF NOT EXISTS events (
    event_id         INTEGER PRIMARY KEY AUTOINCREMENT,
    kind             TEXT NOT NULL,
    current_version  TEXT NOT NULL DEFAULT '',
    latest_version   TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT '',
    package_url      TEXT NOT NULL DEFAULT '',
    error            TEXT NOT NULL DEFAULT '',
    created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_created
    ON events(created_at DESC);
`
