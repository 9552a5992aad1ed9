package mongo

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// backedUpCollections are the operational collections the DR engine snapshots.
var backedUpCollections = []string{
	collectionIncidents,
	collectionEvents,
	authCollection,
}

// CollectionExporter dumps Mongo collections as NDJSON (canonical extended
// JSON, one document per line) for the backup engine.
type CollectionExporter struct {
	db *mongo.Database
}

func NewCollectionExporter(db *mongo.Database) *CollectionExporter {
	return &CollectionExporter{db: db}
}

// Export writes one <collection>.ndjson file per collection into dir.
func (e *CollectionExporter) Export(ctx context.Context, dir string) ([]string, error) {
	exported := make([]string, 0, len(backedUpCollections))
	for _, name := range backedUpCollections {
		if err := e.exportCollection(ctx, name, dir); err != nil {
			return nil, err
		}
		exported = append(exported, name)
	}
	return exported, nil
}

func (e *CollectionExporter) exportCollection(ctx context.Context, name, dir string) error {
	cursor, err := e.db.Collection(name).Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	defer cursor.Close(ctx)

	f, err := os.OpenFile(filepath.Join(dir, name+".ndjson"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("export %s: decode: %w", name, err)
		}
		line, err := bson.MarshalExtJSON(doc, true, false)
		if err != nil {
			return fmt.Errorf("export %s: marshal: %w", name, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("export %s: write: %w", name, err)
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("export %s: cursor: %w", name, err)
	}
	return w.Flush()
}

// Import reads every .ndjson file in dir back into its collection. Existing
// documents with the same _id are left untouched; restore is additive.
func (e *CollectionExporter) Import(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".ndjson") {
			continue
		}
		collection := strings.TrimSuffix(name, ".ndjson")
		if err := e.importCollection(ctx, collection, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (e *CollectionExporter) importCollection(ctx context.Context, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("import %s: %w", name, err)
	}
	defer f.Close()

	col := e.db.Collection(name)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc bson.M
		if err := bson.UnmarshalExtJSON(line, true, &doc); err != nil {
			return fmt.Errorf("import %s: unmarshal: %w", name, err)
		}
		if _, err := col.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("import %s: insert: %w", name, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("import %s: scan: %w", name, err)
	}
	return nil
}
