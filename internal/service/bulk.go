package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"photoapi/internal/deleter"
	"photoapi/internal/fetch"
	"photoapi/internal/model"
	"photoapi/internal/repository"
	"photoapi/internal/storage"
)

// DeletePrompt is the question put to the user before photos are destroyed.
const DeletePrompt = "Delete selected photos permanently?"

// DefaultArchiveName is the file name offered for multi-photo downloads.
const DefaultArchiveName = "photos.zip"

var (
	// ErrRecordStore wraps a rejected record-store delete. Nothing else was touched.
	ErrRecordStore = errors.New("record store rejected delete")
	// ErrNothingToArchive means every fetch of a multi-photo download failed.
	ErrNothingToArchive = errors.New("no photo could be fetched")
	// ErrNoLocator means a photo has neither a public URL nor a storage path.
	ErrNoLocator = errors.New("photo has no storage locator")
	// ErrNoIntermediary means an external photo was selected but no intermediary is configured.
	ErrNoIntermediary = errors.New("storage-deletion intermediary not configured")
)

var tracer = otel.Tracer("photoapi/internal/service")

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed returns a Confirmer that always answers ok.
func Confirmed(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return ok })
}

// SavedFile is a single photo the caller should save directly from URL.
type SavedFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Archive is a serialized zip holding every photo that could be fetched.
type Archive struct {
	Name    string
	Data    []byte
	Entries []string
}

// DownloadResult is either a single direct-save file or an archive.
type DownloadResult struct {
	File    *SavedFile                  `json:"file,omitempty"`
	Archive *Archive                    `json:"-"`
	Results []model.BulkOperationResult `json:"results,omitempty"`
}

// DeleteResult reports what a Delete did. Declined means the user said no and nothing happened.
type DeleteResult struct {
	Declined bool                        `json:"declined"`
	Deleted  []string                    `json:"deleted"`
	Results  []model.BulkOperationResult `json:"results"`
}

// Failures lists the per-item steps that failed.
func (r *DeleteResult) Failures() []model.BulkOperationResult {
	return model.Failures(r.Results)
}

// BulkService runs bulk download and delete against the record store, the
// primary object store and the deletion intermediary.
type BulkService interface {
	// Download resolves one photo to a direct-save URL, or fetches several and zips them.
	// Per-item fetch failures are reported in the result and never abort the batch.
	Download(ctx context.Context, photos []model.Photo) (*DownloadResult, error)

	// Delete confirms, removes the records in one call and then cleans up storage.
	// Only a record-store failure is returned as an error; storage failures are
	// logged and reported per item.
	Delete(ctx context.Context, photos []model.Photo, confirm Confirmer) (*DeleteResult, error)
}

// BulkOptions tunes BulkService.
type BulkOptions struct {
	// Bucket is stripped from stored locators before storage calls.
	Bucket       string
	SignedURLTTL time.Duration
	// CallTimeout bounds every external call; zero disables it.
	CallTimeout time.Duration
	// FetchConcurrency and RemoveConcurrency bound fan-out; zero or less means unbounded.
	FetchConcurrency  int
	RemoveConcurrency int
	ArchiveName       string
}

type bulkService struct {
	store   storage.Storage
	repo    repository.CollectionRepository
	remover deleter.Remover
	fetcher fetch.Fetcher
	opts    BulkOptions
	logger  *slog.Logger
	metrics *Metrics
}

// NewBulkService constructs a BulkService. remover may be nil when no
// intermediary is deployed; external photos then fail storage cleanup.
func NewBulkService(
	store storage.Storage,
	repo repository.CollectionRepository,
	remover deleter.Remover,
	fetcher fetch.Fetcher,
	opts BulkOptions,
	logger *slog.Logger,
	metrics *Metrics,
) BulkService {
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = time.Hour
	}
	if opts.ArchiveName == "" {
		opts.ArchiveName = DefaultArchiveName
	}
	return &bulkService{
		store:   store,
		repo:    repo,
		remover: remover,
		fetcher: fetcher,
		opts:    opts,
		logger:  logger.With("component", "bulk"),
		metrics: metrics,
	}
}

func (s *bulkService) Download(ctx context.Context, photos []model.Photo) (*DownloadResult, error) {
	if len(photos) == 0 {
		return &DownloadResult{}, nil
	}
	ctx, span := tracer.Start(ctx, "bulk.download", trace.WithAttributes(attribute.Int("photos.count", len(photos))))
	defer span.End()

	if len(photos) == 1 {
		p := photos[0]
		cctx, cancel := s.callCtx(ctx)
		u, err := s.resolveURL(cctx, p)
		cancel()
		if err != nil {
			s.metrics.operation("download", "failed")
			span.RecordError(err)
			span.SetStatus(codes.Error, "resolve url")
			return nil, fmt.Errorf("resolve photo %s: %w", p.ID, err)
		}
		s.metrics.operation("download", "success")
		return &DownloadResult{File: &SavedFile{URL: u, Filename: naturalName(p, s.opts.Bucket)}}, nil
	}

	type fetched struct {
		data []byte
		err  error
	}
	slots := make([]fetched, len(photos))

	var g errgroup.Group
	if s.opts.FetchConcurrency > 0 {
		g.SetLimit(s.opts.FetchConcurrency)
	}
	for i, p := range photos {
		g.Go(func() error {
			cctx, cancel := s.callCtx(ctx)
			defer cancel()
			u, err := s.resolveURL(cctx, p)
			if err != nil {
				slots[i] = fetched{err: err}
				return nil
			}
			data, err := s.fetcher.Fetch(cctx, u)
			slots[i] = fetched{data: data, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	res := &DownloadResult{Archive: &Archive{Name: s.opts.ArchiveName}}
	for i, p := range photos {
		if err := slots[i].err; err != nil {
			s.itemFailed(ctx, p, model.StageFetch, "", err)
			res.Results = append(res.Results, failure(p.ID, model.StageFetch, err))
			continue
		}
		name := entryName(p)
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store, Modified: p.CreatedAt})
		if err == nil {
			_, err = w.Write(slots[i].data)
		}
		if err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", name, err)
		}
		res.Archive.Entries = append(res.Archive.Entries, name)
		res.Results = append(res.Results, success(p.ID, model.StageFetch))
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	if len(res.Archive.Entries) == 0 {
		s.metrics.operation("download", "failed")
		span.SetStatus(codes.Error, "nothing fetched")
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNothingToArchive
	}
	res.Archive.Data = buf.Bytes()

	outcome := "success"
	if len(res.Archive.Entries) < len(photos) {
		outcome = "partial"
	}
	s.metrics.operation("download", outcome)
	span.SetAttributes(attribute.Int("archive.entries", len(res.Archive.Entries)))
	return res, nil
}

func (s *bulkService) Delete(ctx context.Context, photos []model.Photo, confirm Confirmer) (*DeleteResult, error) {
	if len(photos) == 0 {
		return &DeleteResult{}, nil
	}
	ctx, span := tracer.Start(ctx, "bulk.delete", trace.WithAttributes(attribute.Int("photos.count", len(photos))))
	defer span.End()

	if confirm == nil || !confirm.Confirm(ctx, DeletePrompt) {
		s.metrics.operation("delete", "declined")
		span.SetAttributes(attribute.Bool("delete.declined", true))
		return &DeleteResult{Declined: true}, nil
	}

	ids := make([]string, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}

	if err := s.deleteRecords(ctx, ids); err != nil {
		s.metrics.operation("delete", "failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "record store")
		s.logger.ErrorContext(ctx, "record store delete failed",
			"event", "record_delete_failed",
			"status", "error",
			"photo_count", len(ids),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrRecordStore, err)
	}

	res := &DeleteResult{Deleted: ids}
	for _, id := range ids {
		res.Results = append(res.Results, success(id, model.StageRecordStore))
	}

	// Records are gone, so the photos are deleted from the user's point of view.
	// Cleanup runs to completion even if the caller goes away; leftovers are orphans.
	cleanupCtx := context.WithoutCancel(ctx)
	res.Results = append(res.Results, s.removeObjects(cleanupCtx, photos)...)

	outcome := "success"
	if len(res.Failures()) > 0 {
		outcome = "partial"
	}
	s.metrics.operation("delete", outcome)
	s.logger.InfoContext(ctx, "photos deleted",
		"event", "photos_deleted",
		"status", outcome,
		"photo_count", len(ids),
		"cleanup_failures", len(res.Failures()),
	)
	return res, nil
}

func (s *bulkService) deleteRecords(ctx context.Context, ids []string) error {
	ctx, span := tracer.Start(ctx, "bulk.delete.record_store")
	defer span.End()
	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	return s.repo.DeletePhotos(cctx, ids)
}

// removeObjects deletes primary-store objects with one batch call and external
// objects with one intermediary call each. Results keep selection order.
func (s *bulkService) removeObjects(ctx context.Context, photos []model.Photo) []model.BulkOperationResult {
	ctx, span := tracer.Start(ctx, "bulk.delete.storage_cleanup")
	defer span.End()

	slots := make([]model.BulkOperationResult, len(photos))
	var primary []int
	var g errgroup.Group
	if s.opts.RemoveConcurrency > 0 {
		g.SetLimit(s.opts.RemoveConcurrency)
	}

	for i, p := range photos {
		if !p.External() {
			primary = append(primary, i)
			continue
		}
		g.Go(func() error {
			slots[i] = s.removeExternal(ctx, p)
			return nil
		})
	}
	if len(primary) > 0 {
		g.Go(func() error {
			s.removePrimary(ctx, photos, primary, slots)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range slots {
		if r.Failed() {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("cleanup.failures", failed))
	return slots
}

func (s *bulkService) removePrimary(ctx context.Context, photos []model.Photo, idx []int, slots []model.BulkOperationResult) {
	keys := make([]string, 0, len(idx))
	for _, i := range idx {
		key := storage.TrimBucketPrefix(photos[i].StoragePath, s.opts.Bucket)
		if key == "" {
			s.itemFailed(ctx, photos[i], model.StagePrimaryStore, "", ErrNoLocator)
			slots[i] = failure(photos[i].ID, model.StagePrimaryStore, ErrNoLocator)
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return
	}

	cctx, cancel := s.callCtx(ctx)
	failed := s.store.RemoveMany(cctx, keys)
	cancel()

	for _, i := range idx {
		if slots[i].PhotoID != "" {
			continue
		}
		p := photos[i]
		key := storage.TrimBucketPrefix(p.StoragePath, s.opts.Bucket)
		if err, ok := failed[key]; ok {
			s.itemFailed(ctx, p, model.StagePrimaryStore, key, err)
			slots[i] = failure(p.ID, model.StagePrimaryStore, err)
			continue
		}
		slots[i] = success(p.ID, model.StagePrimaryStore)
	}
}

func (s *bulkService) removeExternal(ctx context.Context, p model.Photo) model.BulkOperationResult {
	if s.remover == nil {
		s.itemFailed(ctx, p, model.StageSecondaryStore, p.S3Key, ErrNoIntermediary)
		return failure(p.ID, model.StageSecondaryStore, ErrNoIntermediary)
	}
	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	if err := s.remover.Remove(cctx, p.S3Key); err != nil {
		s.itemFailed(ctx, p, model.StageSecondaryStore, p.S3Key, err)
		return failure(p.ID, model.StageSecondaryStore, err)
	}
	return success(p.ID, model.StageSecondaryStore)
}

// resolveURL prefers the precomputed public URL and falls back to a presigned
// URL for the primary locator.
func (s *bulkService) resolveURL(ctx context.Context, p model.Photo) (string, error) {
	if p.PublicURL != "" {
		return p.PublicURL, nil
	}
	key := storage.TrimBucketPrefix(p.StoragePath, s.opts.Bucket)
	if key == "" {
		return "", ErrNoLocator
	}
	return s.store.PresignGet(ctx, key, s.opts.SignedURLTTL)
}

func (s *bulkService) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.CallTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.CallTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *bulkService) itemFailed(ctx context.Context, p model.Photo, stage model.Stage, key string, err error) {
	s.metrics.itemFailure(stage)
	s.logger.WarnContext(ctx, "bulk item failed",
		"event", "bulk_item_failed",
		"status", "error",
		"photo_id", p.ID,
		"stage", string(stage),
		"key", key,
		"error", err,
	)
}

func success(id string, stage model.Stage) model.BulkOperationResult {
	return model.BulkOperationResult{PhotoID: id, Stage: stage, Outcome: model.OutcomeSuccess}
}

func failure(id string, stage model.Stage, err error) model.BulkOperationResult {
	return model.BulkOperationResult{PhotoID: id, Stage: stage, Outcome: model.OutcomeFailure, Detail: err.Error()}
}

// entryName is the archive entry for p: its ID plus the locator's extension.
func entryName(p model.Photo) string {
	ext := strings.ToLower(path.Ext(p.StoragePath))
	if ext == "" {
		ext = strings.ToLower(path.Ext(urlPath(p.PublicURL)))
	}
	if ext == "" {
		ext = ".jpg"
	}
	return p.ID + ext
}

// naturalName is the base name of the stored object, used for direct saves.
func naturalName(p model.Photo, bucket string) string {
	if key := storage.TrimBucketPrefix(p.StoragePath, bucket); key != "" {
		return path.Base(key)
	}
	if base := path.Base(urlPath(p.PublicURL)); base != "." && base != "/" {
		return base
	}
	return entryName(p)
}

func urlPath(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}
