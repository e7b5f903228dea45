package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/bakery-app/utils"
)

// WithTransaction runs fn inside one store transaction. The transaction is
// committed only when fn returns nil; any error or panic rolls it back.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storeError("begin transaction", tx.Error)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		tx.Rollback()
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if cerr := tx.Commit().Error; cerr != nil {
		return storeError("commit transaction", cerr)
	}
	committed = true
	return nil
}

// forUpdate locks the rows read by q until the transaction ends. Dialects
// without row locks (sqlite) drop the clause and rely on the database lock.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func wrapf(err error, format string, args ...interface{}) error {
	return storeError(fmt.Sprintf(format, args...), err)
}

// logAbort reports a rolled back operation. Expected rejections go to the
// info log; everything else is an error.
func logAbort(op string, fields logrus.Fields, err error) {
	if se, ok := AsError(err); ok && (se.Kind == KindValidation || se.Kind == KindNotFound) {
		utils.InfoLogger.WithFields(fields).Infof("%s rejected: %v", op, err)
		return
	}
	utils.ErrorLogger.WithFields(fields).Errorf("%s aborted: %v", op, err)
}
