// Package logger provides adapters for popular logger libraries to work with mapledb's Logger interface.
//
// The adapters allow you to use your existing logger with mapledb without writing boilerplate.
// Note that the standard library's slog.Logger already implements mapledb.Logger directly.
//
// Example with zap:
//
//	import (
//	    "mapledb"
//	    "mapledb/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    db, err := mapledb.Open("index.db", mapledb.WithLogger(logger.NewZap(zapLogger)))
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer db.Close()
//	}
package logger
