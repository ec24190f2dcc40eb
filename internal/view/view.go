// Package view holds per-client collection view sessions: the loaded
// collection, the photo selection and the modal state, plus the bulk actions
// that run against them.
package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"photoapi/internal/model"
	"photoapi/internal/selection"
	"photoapi/internal/service"
)

var (
	ErrNotFound      = errors.New("view not found")
	ErrNotReady      = errors.New("collection is not loaded")
	ErrPhotoNotFound = errors.New("photo not in collection")
	ErrBusy          = errors.New("a bulk operation is already running")
	ErrClosed        = errors.New("view closed")
)

// Loader fetches a collection with its photos.
type Loader func(ctx context.Context, collectionID string) (*model.Collection, error)

// State is a point-in-time snapshot of a view for rendering.
type State struct {
	ID             string            `json:"id"`
	CollectionID   string            `json:"collection_id"`
	Loading        bool              `json:"loading"`
	ErrorMessage   string            `json:"error_message"`
	Collection     *model.Collection `json:"collection"`
	SelectedPhotos []model.Photo     `json:"selected_photos"`
	ModalImage     string            `json:"modal_image"`
	// SuspendScroll asks the host to stop background scrolling while the modal is open.
	SuspendScroll bool `json:"suspend_scroll"`
}

// View is one client's session on a collection.
type View struct {
	id           string
	collectionID string

	mu         sync.Mutex
	loading    bool
	errMsg     string
	collection *model.Collection
	modalImage string
	lastActive time.Time

	selection *selection.Selection

	// opMu admits one bulk operation at a time.
	opMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	ready  chan struct{}
	now    func() time.Time
}

func newView(id, collectionID string, now func() time.Time) *View {
	ctx, cancel := context.WithCancel(context.Background())
	return &View{
		id:           id,
		collectionID: collectionID,
		loading:      true,
		lastActive:   now(),
		selection:    selection.New(),
		ctx:          ctx,
		cancel:       cancel,
		ready:        make(chan struct{}),
		now:          now,
	}
}

// ID returns the view identifier.
func (v *View) ID() string { return v.id }

// Ready is closed once the initial load finished, successfully or not.
func (v *View) Ready() <-chan struct{} { return v.ready }

func (v *View) finishLoad(c *model.Collection, errMsg string) {
	v.mu.Lock()
	v.loading = false
	v.collection = c
	v.errMsg = errMsg
	v.mu.Unlock()
	close(v.ready)
}

// State returns a snapshot safe to hand to other goroutines.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastActive = v.now()
	return State{
		ID:             v.id,
		CollectionID:   v.collectionID,
		Loading:        v.loading,
		ErrorMessage:   v.errMsg,
		Collection:     v.collection.Clone(),
		SelectedPhotos: v.selection.Current(),
		ModalImage:     v.modalImage,
		SuspendScroll:  v.modalImage != "",
	}
}

// OpenModal shows url full-size.
func (v *View) OpenModal(url string) {
	v.mu.Lock()
	v.modalImage = url
	v.lastActive = v.now()
	v.mu.Unlock()
}

// CloseModal hides the modal. It is a no-op when none is open.
func (v *View) CloseModal() {
	v.mu.Lock()
	v.modalImage = ""
	v.lastActive = v.now()
	v.mu.Unlock()
}

// Toggle flips the selection of a photo of the loaded collection and reports
// whether it is selected afterwards.
func (v *View) Toggle(photoID string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastActive = v.now()
	if v.loading || v.collection == nil {
		return false, ErrNotReady
	}
	p, ok := v.collection.Photo(photoID)
	if !ok {
		return false, ErrPhotoNotFound
	}
	return v.selection.Toggle(p), nil
}

// ClearSelection empties the selection.
func (v *View) ClearSelection() {
	v.touch()
	v.selection.Clear()
}

// DownloadSelected downloads the current selection and, on success, deselects
// the downloaded photos. Photos toggled while it ran stay selected.
func (v *View) DownloadSelected(ctx context.Context, exec service.BulkService) (*service.DownloadResult, error) {
	if !v.opMu.TryLock() {
		return nil, ErrBusy
	}
	defer v.opMu.Unlock()
	defer v.touch()

	ctx, cancel := v.opContext(ctx)
	defer cancel()

	photos := v.selection.Current()
	res, err := exec.Download(ctx, photos)
	if err != nil {
		return nil, err
	}
	v.selection.Remove(photoIDs(photos)...)
	return res, nil
}

// DeleteSelected deletes the current selection. When the records are gone the
// deleted photos leave the collection and the selection, whatever happened
// during storage cleanup. On error or decline nothing changes.
func (v *View) DeleteSelected(ctx context.Context, exec service.BulkService, confirm service.Confirmer) (*service.DeleteResult, error) {
	if !v.opMu.TryLock() {
		return nil, ErrBusy
	}
	defer v.opMu.Unlock()
	defer v.touch()

	ctx, cancel := v.opContext(ctx)
	defer cancel()

	res, err := exec.Delete(ctx, v.selection.Current(), confirm)
	if err != nil {
		return nil, err
	}
	if res.Declined || len(res.Deleted) == 0 {
		return res, nil
	}

	v.mu.Lock()
	if v.collection != nil {
		v.collection.RemovePhotos(res.Deleted)
	}
	v.mu.Unlock()
	v.selection.Remove(res.Deleted...)
	return res, nil
}

// opContext ends when either ctx or the view ends.
func (v *View) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(v.ctx, func() { cancel(ErrClosed) })
	return ctx, func() {
		stop()
		cancel(nil)
	}
}

func photoIDs(photos []model.Photo) []string {
	ids := make([]string, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}
	return ids
}

func (v *View) touch() {
	v.mu.Lock()
	v.lastActive = v.now()
	v.mu.Unlock()
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastActive
}

func (v *View) close() {
	v.cancel()
}
