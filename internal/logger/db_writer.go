package logger

import (
	"context"
	"fmt"
	"time"

	"go-memo/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level   zapcore.Level
	Message string
	UserID  string
	Caller  string // Function name
}

// logRecord is the persisted shape in the app_logs collection
type logRecord struct {
	Message   string    `bson:"message"`
	UserID    string    `bson:"user_id,omitempty"`
	Level     string    `bson:"level"`
	Caller    string    `bson:"caller,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	db      *mongo.Database
	logChan chan LogEntry
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(mongodb *database.MongodbDB) *DBLogWriter {
	writer := &DBLogWriter{
		db:      mongodb.DB,
		logChan: make(chan LogEntry, 1000), // Buffer 1000 logs
	}

	// Start the background worker immediately
	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
		// Log pushed to channel
	default:
		// Channel full: drop log to prevent blocking the API
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		record := logRecord{
			Message:   entry.Message,
			UserID:    entry.UserID,
			Level:     entry.Level.String(),
			Caller:    entry.Caller,
			CreatedAt: time.Now().UTC(),
		}

		// Insert into DB (safely ignore errors to keep app running)
		w.db.Collection("app_logs").InsertOne(context.Background(), record)
	}
}
