package store

const schema = `
CREATE TABLE IF NOT EXISTS demands (
    id                TEXT PRIMARY KEY,
    content           TEXT NOT NULL,
    title             TEXT NOT NULL DEFAULT '',
    platform          TEXT NOT NULL,
    source_url        TEXT NOT NULL UNIQUE,
    author            TEXT NOT NULL DEFAULT '',
    author_url        TEXT NOT NULL DEFAULT '',
    timestamp         DATETIME NOT NULL,
    collected_at      DATETIME NOT NULL,
    upvotes           INTEGER NOT NULL DEFAULT 0,
    comments          INTEGER NOT NULL DEFAULT 0,
    shares            INTEGER NOT NULL DEFAULT 0,
    interaction_score INTEGER NOT NULL DEFAULT 0,
    sentiment         TEXT NOT NULL DEFAULT 'neutral',
    sentiment_score   REAL NOT NULL DEFAULT 0,
    tags              TEXT NOT NULL DEFAULT '[]',
    product_mentioned TEXT NOT NULL DEFAULT '[]',
    category          TEXT NOT NULL DEFAULT '',
    language          TEXT NOT NULL DEFAULT 'en',
    subreddit         TEXT NOT NULL DEFAULT '',
    repository        TEXT NOT NULL DEFAULT '',
    issue_number      INTEGER NOT NULL DEFAULT 0,
    is_processed      BOOLEAN NOT NULL DEFAULT 0,
    is_deleted        BOOLEAN NOT NULL DEFAULT 0,
    created_at        DATETIME NOT NULL,
    updated_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_demands_platform ON demands(platform);
CREATE INDEX IF NOT EXISTS idx_demands_timestamp ON demands(timestamp);
CREATE INDEX IF NOT EXISTS idx_demands_sentiment ON demands(sentiment);
CREATE INDEX IF NOT EXISTS idx_demands_category ON demands(category);
CREATE INDEX IF NOT EXISTS idx_demands_score ON demands(interaction_score);
CREATE INDEX IF NOT EXISTS idx_demands_platform_time_sentiment ON demands(platform, timestamp, sentiment);

CREATE VIRTUAL TABLE IF NOT EXISTS demands_fts USING fts5(
    title,
    content,
    content='demands',
    content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS demands_fts_insert AFTER INSERT ON demands BEGIN
    INSERT INTO demands_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
END;

CREATE TRIGGER IF NOT EXISTS demands_fts_delete AFTER DELETE ON demands BEGIN
    INSERT INTO demands_fts(demands_fts, rowid, title, content) VALUES ('delete', old.rowid, old.title, old.content);
END;

CREATE TRIGGER IF NOT EXISTS demands_fts_update AFTER UPDATE OF title, content ON demands BEGIN
    INSERT INTO demands_fts(demands_fts, rowid, title, content) VALUES ('delete', old.rowid, old.title, old.content);
    INSERT INTO demands_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
END;

CREATE TABLE IF NOT EXISTS user_bookmarks (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    demand_id       TEXT NOT NULL REFERENCES demands(id) ON DELETE CASCADE,
    custom_notes    TEXT NOT NULL DEFAULT '',
    custom_tags     TEXT NOT NULL DEFAULT '[]',
    custom_category TEXT NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL,
    updated_at      DATETIME NOT NULL,
    UNIQUE(user_id, demand_id)
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_user ON user_bookmarks(user_id);
CREATE INDEX IF NOT EXISTS idx_bookmarks_demand ON user_bookmarks(demand_id);

CREATE TABLE IF NOT EXISTS search_history (
    id           TEXT PRIMARY KEY,
    query        TEXT NOT NULL,
    user_id      TEXT NOT NULL DEFAULT '',
    filters      TEXT NOT NULL DEFAULT '{}',
    result_count INTEGER NOT NULL DEFAULT 0,
    has_results  BOOLEAN NOT NULL DEFAULT 1,
    created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_query ON search_history(query);
CREATE INDEX IF NOT EXISTS idx_history_created ON search_history(created_at);

CREATE TABLE IF NOT EXISTS trending_topics (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    topic             TEXT NOT NULL,
    platform          TEXT NOT NULL,
    date              TEXT NOT NULL,
    period            TEXT NOT NULL,
    mention_count     INTEGER NOT NULL DEFAULT 0,
    total_interaction INTEGER NOT NULL DEFAULT 0,
    avg_sentiment     REAL NOT NULL DEFAULT 0,
    updated_at        DATETIME NOT NULL,
    UNIQUE(topic, platform, date, period)
);

CREATE INDEX IF NOT EXISTS idx_trending_period_date ON trending_topics(period, date);
`
