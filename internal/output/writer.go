package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pitwall-hub/pitwall/internal/cache"
)

// Writer 通过 Store 原子写入与读取 JSON 产物。
type Writer struct {
	store cache.Store
}

// NewWriter 构造产物写入器，store 一般为 Manager.DataStore()。
func NewWriter(store cache.Store) *Writer {
	return &Writer{store: store}
}

// WriteJSON 以两空格缩进写入任意文档。
func (w *Writer) WriteJSON(ctx context.Context, name string, doc any) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if _, err := w.store.Put(ctx, cache.Locator{Path: name}, bytes.NewReader(payload), cache.PutOptions{}); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ReadJSON 读取并解码产物，文件不存在时返回包装了 cache.ErrNotFound 的错误。
func (w *Writer) ReadJSON(ctx context.Context, name string, doc any) error {
	result, err := w.store.Get(ctx, cache.Locator{Path: name})
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	defer result.Reader.Close()

	raw, err := io.ReadAll(result.Reader)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (w *Writer) WriteLatestSession(ctx context.Context, doc LatestSession) error {
	return w.WriteJSON(ctx, LatestSessionFile, doc)
}

func (w *Writer) ReadLatestSession(ctx context.Context) (LatestSession, error) {
	var doc LatestSession
	err := w.ReadJSON(ctx, LatestSessionFile, &doc)
	return doc, err
}

func (w *Writer) WriteDriverStandings(ctx context.Context, doc DriverStandings) error {
	return w.WriteJSON(ctx, DriverStandingsFile(doc.Season), doc)
}

func (w *Writer) ReadDriverStandings(ctx context.Context, year int) (DriverStandings, error) {
	var doc DriverStandings
	err := w.ReadJSON(ctx, DriverStandingsFile(year), &doc)
	return doc, err
}

func (w *Writer) WriteConstructorStandings(ctx context.Context, doc ConstructorStandings) error {
	return w.WriteJSON(ctx, ConstructorStandingsFile(doc.Season), doc)
}

func (w *Writer) ReadConstructorStandings(ctx context.Context, year int) (ConstructorStandings, error) {
	var doc ConstructorStandings
	err := w.ReadJSON(ctx, ConstructorStandingsFile(year), &doc)
	return doc, err
}

func (w *Writer) WriteSchedule(ctx context.Context, doc Schedule) error {
	return w.WriteJSON(ctx, ScheduleFile(doc.Season), doc)
}

func (w *Writer) ReadSchedule(ctx context.Context, year int) (Schedule, error) {
	var doc Schedule
	err := w.ReadJSON(ctx, ScheduleFile(year), &doc)
	return doc, err
}

func (w *Writer) WriteNextRace(ctx context.Context, doc NextRace) error {
	return w.WriteJSON(ctx, NextRaceFile, doc)
}

func (w *Writer) ReadNextRace(ctx context.Context) (NextRace, error) {
	var doc NextRace
	err := w.ReadJSON(ctx, NextRaceFile, &doc)
	return doc, err
}

// RemoveNextRace 在赛季已无后续正赛时撤下 next-race.json。
func (w *Writer) RemoveNextRace(ctx context.Context) error {
	if err := w.store.Remove(ctx, cache.Locator{Path: NextRaceFile}); err != nil {
		return fmt.Errorf("remove %s: %w", NextRaceFile, err)
	}
	return nil
}
