package utils

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

func mysqlErrorNumber(err error) uint16 {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number
	}
	return 0
}

func IsDuplicateEntry(err error) bool {
	return mysqlErrorNumber(err) == mysqlDuplicateEntry
}

func IsForeignKeyViolation(err error) bool {
	n := mysqlErrorNumber(err)
	return n == mysqlRowIsReferenced || n == mysqlNoReferencedRow
}
