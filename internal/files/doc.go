// Package files watches the sentiment workbook on disk.
//
// Watcher polls the file's size and modification time and calls a reload
// function when either changes, including the file appearing after a
// missing-file start or disappearing later:
//
//	w := files.NewWatcher(cfg.Data.File, cfg.Data.WatchInterval, reload, logger)
//	go w.Run(ctx)
package files
