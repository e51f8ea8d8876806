// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-sync-keeper/models"
)

const (
	fingerprintsTable = "fingerprints"
	anchorsTable      = "anchors"

	// insertBatchSize keeps a multi-row INSERT under SQLite's host parameter
	// limit (4 columns per row).
	insertBatchSize = 200

	upsertAnchorSuffix = "ON CONFLICT (member_id, anchor_key) DO UPDATE SET " +
		"anchor_value = excluded.anchor_value, updated_at = excluded.updated_at"
)

func selectFingerprintsQuery(b sq.StatementBuilderType, memberID string, objectType models.ObjectType) (string, []any, error) {
	return b.Select("item_id", "fingerprint").
		From(fingerprintsTable).
		Where(sq.Eq{"member_id": memberID, "object_type": string(objectType)}).
		OrderBy("item_id").
		ToSql()
}

func deleteFingerprintsQuery(b sq.StatementBuilderType, memberID string, objectType models.ObjectType) (string, []any, error) {
	return b.Delete(fingerprintsTable).
		Where(sq.Eq{"member_id": memberID, "object_type": string(objectType)}).
		ToSql()
}

// insertFingerprintsQueries splits records into batched multi-row INSERTs.
func insertFingerprintsQueries(b sq.StatementBuilderType, memberID string, objectType models.ObjectType, records []models.FingerprintRecord) ([]string, [][]any, error) {
	var queries []string
	var args [][]any

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))

		insert := b.Insert(fingerprintsTable).
			Columns("member_id", "object_type", "item_id", "fingerprint")
		for _, r := range records[start:end] {
			insert = insert.Values(memberID, string(objectType), string(r.ID), string(r.Fingerprint))
		}

		query, queryArgs, err := insert.ToSql()
		if err != nil {
			return nil, nil, err
		}
		queries = append(queries, query)
		args = append(args, queryArgs)
	}

	return queries, args, nil
}

func selectAnchorQuery(b sq.StatementBuilderType, memberID, key string) (string, []any, error) {
	return b.Select("anchor_value").
		From(anchorsTable).
		Where(sq.Eq{"member_id": memberID, "anchor_key": key}).
		ToSql()
}

func upsertAnchorQuery(b sq.StatementBuilderType, memberID, key, value string, now time.Time) (string, []any, error) {
	return b.Insert(anchorsTable).
		Columns("member_id", "anchor_key", "anchor_value", "updated_at").
		Values(memberID, key, value, now.UTC()).
		Suffix(upsertAnchorSuffix).
		ToSql()
}
