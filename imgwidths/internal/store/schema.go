package store

// Schema contains the DDL for the run history tables.
const Schema = `
-- One row per completed run
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    url           TEXT NOT NULL,
    selector      TEXT NOT NULL,
    min_viewport  INTEGER NOT NULL,
    max_viewport  INTEGER NOT NULL,
    requested     INTEGER NOT NULL,
    total_views   INTEGER NOT NULL,
    excluded      INTEGER NOT NULL DEFAULT 0,
    waste         REAL NOT NULL DEFAULT 0,
    created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

-- Sweep result: rendered width per viewport
CREATE TABLE IF NOT EXISTS run_widths (
    run_id    TEXT NOT NULL,
    viewport  INTEGER NOT NULL,
    width     INTEGER NOT NULL,
    PRIMARY KEY (run_id, viewport),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

-- Demand distribution
CREATE TABLE IF NOT EXISTS run_demand (
    run_id  TEXT NOT NULL,
    width   INTEGER NOT NULL,
    views   INTEGER NOT NULL,
    share   REAL NOT NULL,
    PRIMARY KEY (run_id, width),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

-- Selected srcset widths
CREATE TABLE IF NOT EXISTS run_plan (
    run_id    TEXT NOT NULL,
    position  INTEGER NOT NULL,
    width     INTEGER NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`
