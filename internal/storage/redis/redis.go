// Package redis implements both storage capability sets (spec.md §4.2)
// against Redis 8+ / Valkey-Search over github.com/redis/rueidis.
// Documents live one-per-hash under "<name>:doc:<id>";
// SearchVectorCandidates is served by a FLAT vector index built with
// FT.CREATE and queried with FT.SEARCH ... KNN.
package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vectura/internal/domain"
)

const (
	vectorField = "embedding"
	textField   = "text"
	idField     = "id"
	createdAt   = "createdAt"
)

// Config holds connection parameters for the Redis storage provider.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Storage implements storage.Basic and storage.Indexed against Redis.
type Storage struct {
	client    rueidis.Client
	prefix    string
	indexName string
	dimension int
}

// New connects to Redis and returns a Storage for database name, whose
// documents live under the "<name>:doc:" key prefix and whose vector
// index is named "<name>:idx".
func New(cfg Config, name string, dimension int) (*Storage, error) {
	if len(cfg.Addrs) == 0 {
		return nil, domain.Invalid("redis storage requires at least one address")
	}
	if dimension <= 0 {
		return nil, domain.Invalid("redis storage requires a positive dimension")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}
	return &Storage{
		client:    client,
		prefix:    name + ":doc:",
		indexName: name + ":idx",
		dimension: dimension,
	}, nil
}

// Close releases the underlying client.
func (s *Storage) Close() { s.client.Close() }

func (s *Storage) key(id string) string { return s.prefix + id }

func (s *Storage) idFromKey(key string) string { return key[len(s.prefix):] }

// CreateStorageDirectoryIfNeeded creates the FT vector index if absent.
// Idempotent: "Index already exists" from a concurrent creator is
// swallowed.
func (s *Storage) CreateStorageDirectoryIfNeeded(ctx context.Context) error {
	args := []string{
		s.indexName, "ON", "HASH", "PREFIX", "1", s.prefix, "SCHEMA",
		textField, "TEXT",
		vectorField, "VECTOR", "FLAT", "6",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(s.dimension),
		"DISTANCE_METRIC", "COSINE",
	}
	cmd := s.client.B().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return domain.Storage("create vector index", err)
	}
	return nil
}

// LoadDocuments scans every document key and loads its hash. Used by
// the full-memory search path and as the indexed path's fallback scan.
func (s *Storage) LoadDocuments(ctx context.Context) ([]domain.Document, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	maps, err := s.hgetAllMulti(ctx, keys)
	if err != nil {
		return nil, domain.LoadFailed(fmt.Sprintf("load documents: %v", err))
	}
	out := make([]domain.Document, 0, len(keys))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		doc, err := hashToDocument(m)
		if err != nil {
			return nil, domain.LoadFailed(fmt.Sprintf("decode document %s: %v", s.idFromKey(keys[i]), err))
		}
		out = append(out, doc)
	}
	return out, nil
}

// LoadDocumentsPage loads a stable-ordered page of documents via
// FT.SEARCH, which sorts by internal document id unless told otherwise.
func (s *Storage) LoadDocumentsPage(ctx context.Context, offset, limit int) ([]domain.Document, error) {
	args := []string{s.indexName, "*", "LIMIT", strconv.Itoa(offset), strconv.Itoa(limit)}
	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, domain.LoadFailed(fmt.Sprintf("paged search: %v", err))
	}
	entries := parseSearchHashes(raw)
	out := make([]domain.Document, 0, len(entries))
	for _, m := range entries {
		doc, err := hashToDocument(m)
		if err != nil {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

// LoadDocumentsByID fetches the hashes for the requested ids in one
// DoMulti round-trip. Missing ids are simply absent from the result.
func (s *Storage) LoadDocumentsByID(ctx context.Context, ids []string) (map[string]domain.Document, error) {
	if len(ids) == 0 {
		return map[string]domain.Document{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	maps, err := s.hgetAllMulti(ctx, keys)
	if err != nil {
		return nil, domain.LoadFailed(fmt.Sprintf("load documents by id: %v", err))
	}
	out := make(map[string]domain.Document, len(ids))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		doc, err := hashToDocument(m)
		if err != nil {
			continue
		}
		out[ids[i]] = doc
	}
	return out, nil
}

// SearchVectorCandidates runs an FT.SEARCH ... KNN query against the
// vector index. ok is false when the index hasn't been created yet, so
// the engine falls back to a full scan.
func (s *Storage) SearchVectorCandidates(ctx context.Context, queryEmbedding []float32, _ int, prefilterSize int) ([]string, bool, error) {
	queryStr := fmt.Sprintf("*=>[KNN %d @%s $BLOB]", prefilterSize, vectorField)
	args := []string{
		s.indexName, queryStr,
		"RETURN", "0",
		"SORTBY", "__" + vectorField + "_score",
		"PARAMS", "2", "BLOB", vectorToBytes(queryEmbedding),
		"DIALECT", "2",
	}
	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("knn search: %w", err)
	}
	ids := parseSearchIDs(raw, s.prefix)
	return ids, true, nil
}

// SaveDocument upserts a single document hash.
func (s *Storage) SaveDocument(ctx context.Context, doc domain.Document) error {
	cmd := s.client.B().Hset().Key(s.key(doc.ID)).FieldValue().
		FieldValue(idField, doc.ID).
		FieldValue(textField, doc.Text).
		FieldValue(vectorField, vectorToBytes(doc.Embedding)).
		FieldValue(createdAt, strconv.FormatInt(doc.CreatedAt.UnixNano(), 10)).
		Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return domain.Storage("save document", err)
	}
	return nil
}

// SaveDocuments upserts a batch in a single DoMulti round-trip.
func (s *Storage) SaveDocuments(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	cmds := make([]rueidis.Completed, len(docs))
	for i, doc := range docs {
		cmds[i] = s.client.B().Hset().Key(s.key(doc.ID)).FieldValue().
			FieldValue(idField, doc.ID).
			FieldValue(textField, doc.Text).
			FieldValue(vectorField, vectorToBytes(doc.Embedding)).
			FieldValue(createdAt, strconv.FormatInt(doc.CreatedAt.UnixNano(), 10)).
			Build()
	}
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return domain.Storage(fmt.Sprintf("save document %s", docs[i].ID), err)
		}
	}
	return nil
}

// UpdateDocument upserts doc, preserving id (same as SaveDocument: the
// hash is fully replaced, not merged).
func (s *Storage) UpdateDocument(ctx context.Context, doc domain.Document) error {
	return s.SaveDocument(ctx, doc)
}

// DeleteDocument removes a document's hash. Idempotent: Redis DEL on a
// missing key is not an error.
func (s *Storage) DeleteDocument(ctx context.Context, id string) error {
	cmd := s.client.B().Del().Key(s.key(id)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return domain.Storage("delete document", err)
	}
	return nil
}

// GetTotalDocumentCount reports the document count via FT.SEARCH LIMIT 0 0.
func (s *Storage) GetTotalDocumentCount(ctx context.Context) (int, error) {
	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(s.indexName, "*", "LIMIT", "0", "0").Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return 0, domain.Storage("count documents", err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse document count: %w", err)
	}
	return int(total), nil
}

func (s *Storage) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64
	pattern := s.prefix + "*"
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(pattern).Count(200).Build()
		res, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("scan keys: %w", err)
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

func (s *Storage) hgetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.client.B().Hgetall().Key(key).Build()
	}
	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))
	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, fmt.Errorf("hgetall %s: %w", keys[i], err)
		}
		out[i] = m
	}
	return out, nil
}

func hashToDocument(m map[string]string) (domain.Document, error) {
	embedding, err := bytesToVector(m[vectorField])
	if err != nil {
		return domain.Document{}, err
	}
	nanos, err := strconv.ParseInt(m[createdAt], 10, 64)
	if err != nil {
		return domain.Document{}, fmt.Errorf("parse createdAt: %w", err)
	}
	return domain.New(m[idField], m[textField], embedding, time.Unix(0, nanos).UTC()), nil
}

func parseSearchHashes(raw []rueidis.RedisMessage) []map[string]string {
	if len(raw) == 0 {
		return nil
	}
	total, err := raw[0].AsInt64()
	if err != nil || total == 0 {
		return nil
	}
	out := make([]map[string]string, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		m := make(map[string]string, len(fields)/2)
		for j := 0; j+1 < len(fields); j += 2 {
			k, err1 := fields[j].ToString()
			v, err2 := fields[j+1].ToString()
			if err1 == nil && err2 == nil {
				m[k] = v
			}
		}
		out = append(out, m)
	}
	return out
}

func parseSearchIDs(raw []rueidis.RedisMessage, prefix string) []string {
	if len(raw) == 0 {
		return nil
	}
	total, err := raw[0].AsInt64()
	if err != nil || total == 0 {
		return []string{}
	}
	out := make([]string, 0, total)
	for i := 1; i < len(raw); i++ {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, key[len(prefix):])
		}
	}
	return out
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func bytesToVector(data string) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding data: len=%d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(data[i*4 : i*4+4])))
	}
	return vec, nil
}

func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	ls, lsub := len(s), len(substr)
	if lsub > ls {
		return false
	}
	for i := 0; i <= ls-lsub; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			sc, tc := s[i+j], substr[j]
			if sc >= 'A' && sc <= 'Z' {
				sc += 'a' - 'A'
			}
			if tc >= 'A' && tc <= 'Z' {
				tc += 'a' - 'A'
			}
			if sc != tc {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
