// Package page implements the fixed-size page file, page cache, and
// rollback shadow-copy buffer that every byte read or written by ridgedb
// passes through.
package page

// Size is the fixed page size in bytes. Page 0 is reserved metadata;
// higher page numbers hold B+tree nodes and the catalog directory page.
const Size = 4096

// Page is one fixed-size buffer backed by the pager's cache. Callers
// mutate Data directly; the pager is responsible for persisting it and,
// inside a transaction, for remembering its pre-mutation bytes.
type Page struct {
	Num   uint32
	Data  [Size]byte
	Dirty bool
}
