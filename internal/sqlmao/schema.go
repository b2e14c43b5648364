package sqlmao

// Schema is the SQL schema for a metadata store database, grounded in the
// teacher's own ProjectSchema (entities/observations/relations) but
// generalized to the three typed kinds (artifact/execution/context) and
// their type/event/association/attribution/parent-context tables.
const Schema = `
CREATE TABLE IF NOT EXISTS types (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    kind       TEXT NOT NULL,
    name       TEXT NOT NULL,
    version    TEXT NOT NULL DEFAULT '',
    properties TEXT NOT NULL DEFAULT '{}',
    UNIQUE(kind, name, version)
);

CREATE TABLE IF NOT EXISTS parent_types (
    type_id        INTEGER NOT NULL REFERENCES types(id),
    kind           TEXT NOT NULL,
    parent_type_id INTEGER NOT NULL REFERENCES types(id),
    UNIQUE(type_id, kind)
);

CREATE TABLE IF NOT EXISTS artifacts (
    id                           INTEGER PRIMARY KEY AUTOINCREMENT,
    type_id                      INTEGER NOT NULL REFERENCES types(id),
    uri                          TEXT,
    name                         TEXT,
    properties                   TEXT NOT NULL DEFAULT '{}',
    custom_properties            TEXT NOT NULL DEFAULT '{}',
    state                        INTEGER NOT NULL DEFAULT 0,
    create_time_since_epoch      INTEGER NOT NULL,
    last_update_time_since_epoch INTEGER NOT NULL,
    UNIQUE(type_id, name)
);
CREATE INDEX IF NOT EXISTS idx_artifacts_uri ON artifacts(uri);
CREATE INDEX IF NOT EXISTS idx_artifacts_type ON artifacts(type_id);

CREATE TABLE IF NOT EXISTS executions (
    id                           INTEGER PRIMARY KEY AUTOINCREMENT,
    type_id                      INTEGER NOT NULL REFERENCES types(id),
    name                         TEXT,
    properties                   TEXT NOT NULL DEFAULT '{}',
    custom_properties            TEXT NOT NULL DEFAULT '{}',
    state                        INTEGER NOT NULL DEFAULT 0,
    create_time_since_epoch      INTEGER NOT NULL,
    last_update_time_since_epoch INTEGER NOT NULL,
    UNIQUE(type_id, name)
);
CREATE INDEX IF NOT EXISTS idx_executions_type ON executions(type_id);

CREATE TABLE IF NOT EXISTS contexts (
    id                           INTEGER PRIMARY KEY AUTOINCREMENT,
    type_id                      INTEGER NOT NULL REFERENCES types(id),
    name                         TEXT NOT NULL,
    properties                   TEXT NOT NULL DEFAULT '{}',
    custom_properties            TEXT NOT NULL DEFAULT '{}',
    create_time_since_epoch      INTEGER NOT NULL,
    last_update_time_since_epoch INTEGER NOT NULL,
    UNIQUE(type_id, name)
);
CREATE INDEX IF NOT EXISTS idx_contexts_type ON contexts(type_id);

CREATE TABLE IF NOT EXISTS events (
    id                       INTEGER PRIMARY KEY AUTOINCREMENT,
    execution_id             INTEGER NOT NULL REFERENCES executions(id),
    artifact_id              INTEGER NOT NULL REFERENCES artifacts(id),
    type                     INTEGER NOT NULL,
    path                     TEXT,
    milliseconds_since_epoch INTEGER NOT NULL,
    UNIQUE(execution_id, artifact_id, type, milliseconds_since_epoch)
);
CREATE INDEX IF NOT EXISTS idx_events_execution ON events(execution_id);
CREATE INDEX IF NOT EXISTS idx_events_artifact ON events(artifact_id);

CREATE TABLE IF NOT EXISTS associations (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    context_id   INTEGER NOT NULL REFERENCES contexts(id),
    execution_id INTEGER NOT NULL REFERENCES executions(id),
    UNIQUE(context_id, execution_id)
);
CREATE INDEX IF NOT EXISTS idx_associations_execution ON associations(execution_id);

CREATE TABLE IF NOT EXISTS attributions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    context_id  INTEGER NOT NULL REFERENCES contexts(id),
    artifact_id INTEGER NOT NULL REFERENCES artifacts(id),
    UNIQUE(context_id, artifact_id)
);
CREATE INDEX IF NOT EXISTS idx_attributions_artifact ON attributions(artifact_id);

CREATE TABLE IF NOT EXISTS parent_contexts (
    parent_context_id INTEGER NOT NULL REFERENCES contexts(id),
    child_context_id  INTEGER NOT NULL REFERENCES contexts(id),
    UNIQUE(parent_context_id, child_context_id)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);
`

// Pragmas configures SQLite the same way the teacher's storage package
// does: WAL journaling, a generous busy timeout so short lock contention
// resolves without the application seeing SQLITE_BUSY, and foreign_keys on.
const Pragmas = `
PRAGMA journal_mode = WAL;
PRAGMA busy_timeout = 5000;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
`

const currentSchemaVersion = 1
