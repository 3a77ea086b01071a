package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dialect identifiers supported by the database layer.
const (
	// DialectPostgres is the PostgreSQL dialect name.
	DialectPostgres = "postgres"
	// DialectSQLite is the SQLite dialect name.
	DialectSQLite = "sqlite"
)

// DialectName returns the active database dialect name.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// IsSQLite reports whether the connection uses SQLite.
func IsSQLite(conn *gorm.DB) bool {
	return DialectName(conn) == DialectSQLite
}

// LockForUpdate applies a SELECT ... FOR UPDATE clause on dialects that
// support row locks. SQLite rejects the syntax; there the single writer
// connection already serializes mutations, so the clause is omitted.
func LockForUpdate(conn *gorm.DB) *gorm.DB {
	if IsSQLite(conn) {
		return conn
	}
	return conn.Clauses(clause.Locking{Strength: "UPDATE"})
}

// CaseInsensitiveLikeExpr returns a SQL expression for case-insensitive LIKE.
func CaseInsensitiveLikeExpr(conn *gorm.DB, column string) string {
	if IsSQLite(conn) {
		return fmt.Sprintf("LOWER(%s) LIKE ?", column)
	}
	return fmt.Sprintf("%s ILIKE ?", column)
}

// NormalizeLikePattern normalizes a LIKE pattern for the current dialect.
func NormalizeLikePattern(conn *gorm.DB, pattern string) string {
	if IsSQLite(conn) {
		return strings.ToLower(pattern)
	}
	return pattern
}

// IsUniqueViolation reports whether err is a unique-constraint failure on
// either supported dialect.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
