package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// NormalizePath mirrors the teacher's path-normalization convention: strip
// a leading "./", clean it, convert to forward slashes, and drop a leading
// "/" so that absolute and relative references to the same file intern
// onto the same identity.
func NormalizePath(p string) string {
	p = strings.TrimPrefix(p, "./")
	p = filepath.Clean(p)
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "/")
	return p
}

func hashHex(parts ...string) string {
	h := sha256.New()
	for i, part := range parts {
		if i > 0 {
			h.Write([]byte{'|'})
		}
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentID derives a Document's id from its absolute path and content
// hash: two parses of the same bytes at the same path always agree, and a
// changed content hash always yields a different id. The id is one hash
// over both parts, so it carries no stable path-derived portion; the
// builder recognizes "same file, new content" by its own
// normalized-path index instead.
func DocumentID(path, contentHash string) string {
	norm := NormalizePath(path)
	return "doc:" + hashHex(norm, contentHash)
}

// ContentHash hashes raw file bytes.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ComponentID derives a Component id as documentID + "/" + localName, per
// spec §3.
func ComponentID(documentID, localName string) string {
	return documentID + "/" + localName
}

// NormalizeLocator lowercases and collapses whitespace in a DataSource
// locator (connection string, DSN, path) so that equivalent locators
// produced by different parsers intern onto one node.
func NormalizeLocator(locator string) string {
	fields := strings.Fields(strings.ToLower(locator))
	return strings.Join(fields, " ")
}

// DataSourceID derives a stable, interned id from (kind, normalized
// locator).
func DataSourceID(kind DataSourceKind, locator string) string {
	return "src:" + hashHex(string(kind), NormalizeLocator(locator))
}

// NormalizeEntityName trims whitespace and lowercases schema and name,
// joining them as "schema.name" when a schema is given. No schema prefix
// is stripped, so "dbo.Customer" and "CUSTOMER" intern onto the same node
// only when the caller passes them with the same schema.
func NormalizeEntityName(schema, name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if schema != "" {
		return strings.ToLower(strings.TrimSpace(schema)) + "." + n
	}
	return n
}

// DataEntityID derives an interned id from (schema?, name) after
// normalization.
func DataEntityID(schema, name string) string {
	return "ent:" + hashHex(NormalizeEntityName(schema, name))
}

// ParameterID derives a Parameter id scoped to its owning Document.
func ParameterID(documentID, name string) string {
	return "param:" + hashHex(documentID, name)
}
