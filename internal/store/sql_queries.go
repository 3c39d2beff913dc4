package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/drpg-sync/models"
)

const recordsTable = "records"

var recordColumns = []string{
	"item_id",
	"path",
	"size",
	"last_modified",
	"checksum",
	"status",
	"synced_at",
	"product_name",
	"publisher",
	"file_name",
}

const upsertRecordSuffix = `ON CONFLICT(item_id) DO UPDATE SET
	path = excluded.path,
	size = excluded.size,
	last_modified = excluded.last_modified,
	checksum = excluded.checksum,
	status = excluded.status,
	synced_at = excluded.synced_at,
	product_name = excluded.product_name,
	publisher = excluded.publisher,
	file_name = excluded.file_name`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildGetRecordQuery(id string) (string, []any, error) {
	return psql.Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"item_id": id}).
		ToSql()
}

func buildAllRecordsQuery() (string, []any, error) {
	return psql.Select(recordColumns...).
		From(recordsTable).
		OrderBy("item_id").
		ToSql()
}

func buildUpsertRecordQuery(rec models.LocalRecord) (string, []any, error) {
	var checksum any
	if rec.Checksum != "" {
		checksum = rec.Checksum
	}

	return psql.Insert(recordsTable).
		Columns(recordColumns...).
		Values(
			rec.ItemID,
			rec.Path,
			rec.Size,
			rec.LastModified.UTC(),
			checksum,
			string(rec.Status),
			rec.SyncedAt.UTC(),
			rec.ProductName,
			rec.Publisher,
			rec.FileName,
		).
		Suffix(upsertRecordSuffix).
		ToSql()
}

// pruneBatchSize bounds the ids bound into one DELETE.
const pruneBatchSize = 500

func buildDeleteRecordsQuery(ids []string) (string, []any, error) {
	return psql.Delete(recordsTable).
		Where(sq.Eq{"item_id": ids}).
		ToSql()
}
