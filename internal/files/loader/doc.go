// Package loader implements the file and directory loading engines.
//
// FileLoader turns one data file into test parameters: a single value, or a
// sequence of parts when the content is split. DirectoryLoader fans out over
// a directory and delegates each file to a FileLoader.
//
// Lazy loading defers content reads to the moment a test resolves its
// parameter. Streamable text files resolve parts by seeking to recorded byte
// offsets; everything else shares one memoized whole-file load. Caches
// accumulated along the way are released by ClearCache.
package loader
