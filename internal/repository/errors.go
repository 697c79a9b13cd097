// Package repository holds the MySQL data access layer.  Each table has a
// XxxRepo type built on *sql.DB; operations that must run inside a
// caller-owned transaction are exposed through the ScheduleTx and
// PurchaseTx interfaces.  Lookup failures are reported with the sentinel
// errors below so that higher layers can tell "missing" from "broken".
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// isDuplicate reports whether err is a MySQL unique-key violation (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isLockConflict reports whether InnoDB gave up on a row lock, either by
// picking the statement as a deadlock victim (1213) or after waiting too
// long (1205). Both roll back the statement's transaction.
func isLockConflict(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}
