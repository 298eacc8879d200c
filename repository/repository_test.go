package repository_test

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/photosync/database"
	"github.com/camden-git/photosync/models"
	"github.com/camden-git/photosync/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitGormDB: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("AutoMigrateModels: %v", err)
	}
	return db
}

func utc(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAlbumRepositoryPutGet(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAlbumRepository(db)

	if _, err := repo.Get("missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Get missing: err = %v, want ErrRecordNotFound", err)
	}

	album := &models.Album{
		RemoteID:  "a1",
		Title:     "Trip",
		Size:      2,
		FirstDate: utc("2020-01-01"),
		LastDate:  utc("2020-06-15"),
	}
	if err := repo.Put(album, false); err != nil {
		t.Fatalf("Put create: %v", err)
	}

	got, err := repo.Get("a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Trip" || got.Size != 2 || !got.LastDate.Equal(utc("2020-06-15")) {
		t.Errorf("Get = %+v", got)
	}
}

func TestAlbumRepositoryUpdateResetsDownloaded(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAlbumRepository(db)

	album := &models.Album{RemoteID: "a1", Title: "Trip", Size: 2}
	if err := repo.Put(album, false); err != nil {
		t.Fatalf("Put create: %v", err)
	}
	if err := repo.MarkDownloaded("a1"); err != nil {
		t.Fatalf("MarkDownloaded: %v", err)
	}
	got, _ := repo.Get("a1")
	if !got.Downloaded {
		t.Fatal("MarkDownloaded should set the flag")
	}

	album.Size = 3
	if err := repo.Put(album, true); err != nil {
		t.Fatalf("Put update: %v", err)
	}
	got, _ = repo.Get("a1")
	if got.Downloaded {
		t.Error("a re-indexed album must be revisited by reconciliation")
	}
	if got.Size != 3 {
		t.Errorf("Size = %d, want 3", got.Size)
	}
}

func TestAlbumRepositoryUpdateMissing(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAlbumRepository(db)

	err := repo.Put(&models.Album{RemoteID: "ghost"}, true)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Put update of a missing row: err = %v, want ErrRecordNotFound", err)
	}
	if err := repo.MarkDownloaded("ghost"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("MarkDownloaded of a missing row: err = %v, want ErrRecordNotFound", err)
	}
}

func TestFileDuplicateNo(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewMediaRepository(db)

	num, isNew, err := repo.FileDuplicateNo("IMG_1.jpg", "photos/2020/06", "m1")
	if err != nil {
		t.Fatalf("FileDuplicateNo: %v", err)
	}
	if num != 0 || !isNew {
		t.Errorf("first item: num, isNew = %d, %v; want 0, true", num, isNew)
	}

	if err := repo.Put(&models.MediaItem{
		RemoteID: "m1", Filename: "IMG_1.jpg", RelativeFolder: "photos/2020/06",
		DuplicateNumber: num, CreateDate: utc("2020-06-15"),
	}); err != nil {
		t.Fatalf("Put m1: %v", err)
	}

	num, isNew, err = repo.FileDuplicateNo("IMG_1.jpg", "photos/2020/06", "m2")
	if err != nil {
		t.Fatalf("FileDuplicateNo m2: %v", err)
	}
	if num != 1 || !isNew {
		t.Errorf("second item: num, isNew = %d, %v; want 1, true", num, isNew)
	}
	if err := repo.Put(&models.MediaItem{
		RemoteID: "m2", Filename: "IMG_1.jpg", RelativeFolder: "photos/2020/06",
		DuplicateNumber: num, CreateDate: utc("2020-06-16"),
	}); err != nil {
		t.Fatalf("Put m2: %v", err)
	}

	// a re-indexed item keeps its stored number
	num, isNew, err = repo.FileDuplicateNo("IMG_1.jpg", "photos/2020/06", "m1")
	if err != nil {
		t.Fatalf("FileDuplicateNo m1 again: %v", err)
	}
	if num != 0 || isNew {
		t.Errorf("re-indexed item: num, isNew = %d, %v; want 0, false", num, isNew)
	}

	// the count is scoped per folder
	num, isNew, err = repo.FileDuplicateNo("IMG_1.jpg", "photos/2021/01", "m3")
	if err != nil {
		t.Fatalf("FileDuplicateNo m3: %v", err)
	}
	if num != 0 || !isNew {
		t.Errorf("other folder: num, isNew = %d, %v; want 0, true", num, isNew)
	}
}

func TestMediaPutPreservesDownloaded(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewMediaRepository(db)

	item := &models.MediaItem{RemoteID: "m1", Filename: "a.jpg", RelativeFolder: "photos/2020/06", CreateDate: utc("2020-06-15")}
	if err := repo.Put(item); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := db.Model(&models.MediaItem{}).Where("remote_id = ?", "m1").
		Update("downloaded", true).Error; err != nil {
		t.Fatal(err)
	}

	item.Filename = "renamed.jpg"
	if err := repo.Put(item); err != nil {
		t.Fatalf("Put again: %v", err)
	}

	var got models.MediaItem
	if err := db.Where("remote_id = ?", "m1").First(&got).Error; err != nil {
		t.Fatal(err)
	}
	if got.Filename != "renamed.jpg" {
		t.Errorf("Filename = %q, want renamed.jpg", got.Filename)
	}
	if !got.Downloaded {
		t.Error("re-indexing must not clear the downloaded flag")
	}
}

func TestExistsByNameAndDate(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewMediaRepository(db)

	if err := repo.Put(&models.MediaItem{
		RemoteID: "m1", Filename: "IMG_1.jpg", RelativeFolder: "photos/2020/06",
		CreateDate: time.Date(2020, 6, 15, 14, 30, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	cases := []struct {
		name     string
		filename string
		takenOn  time.Time
		want     bool
	}{
		{"same day other hour", "IMG_1.jpg", time.Date(2020, 6, 15, 8, 0, 0, 0, time.UTC), true},
		{"next day", "IMG_1.jpg", time.Date(2020, 6, 16, 8, 0, 0, 0, time.UTC), false},
		{"other name", "IMG_2.jpg", time.Date(2020, 6, 15, 8, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		got, err := repo.ExistsByNameAndDate(tc.filename, tc.takenOn)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAlbumFilePutUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAlbumFileRepository(db)

	if err := repo.Put("a1", "m1", 5); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := repo.Put("a1", "m1", 2); err != nil {
		t.Fatalf("Put again: %v", err)
	}

	var rows []models.AlbumFile
	if err := db.Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Position != 2 {
		t.Errorf("Position = %d, want 2 after re-put", rows[0].Position)
	}
}

func TestListOrdered(t *testing.T) {
	db := newTestDB(t)
	albums := repository.NewAlbumRepository(db)
	media := repository.NewMediaRepository(db)
	albumFiles := repository.NewAlbumFileRepository(db)

	mustPutAlbum := func(id models.RemoteID, title string) {
		t.Helper()
		err := albums.Put(&models.Album{
			RemoteID: id, Title: title, Size: 2,
			FirstDate: utc("2020-01-01"), LastDate: utc("2020-06-15"),
		}, false)
		if err != nil {
			t.Fatal(err)
		}
	}
	mustPutMedia := func(id models.RemoteID, filename string) {
		t.Helper()
		err := media.Put(&models.MediaItem{
			RemoteID: id, Filename: filename, RelativeFolder: "photos/2020/06",
			CreateDate: utc("2020-06-10"),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	mustPutAlbum("a1", "First")
	mustPutAlbum("a2", "Second")
	for _, m := range []models.RemoteID{"m1", "m2", "m3"} {
		mustPutMedia(m, string(m)+".jpg")
	}
	// positions deliberately inserted out of order
	for _, af := range []struct {
		album, media models.RemoteID
		pos          int
	}{
		{"a1", "m2", 1},
		{"a1", "m1", 0},
		{"a2", "m3", 0},
	} {
		if err := albumFiles.Put(af.album, af.media, af.pos); err != nil {
			t.Fatal(err)
		}
	}
	// an album-file row whose media item is not indexed is dropped, and
	// the drop is logged so the skip is observable
	if err := albumFiles.Put("a1", "unindexed", 2); err != nil {
		t.Fatal(err)
	}

	var logBuf bytes.Buffer
	log.SetOutput(&logBuf)
	rows, err := albumFiles.ListOrdered(false, true)
	log.SetOutput(os.Stderr)
	if err != nil {
		t.Fatalf("ListOrdered: %v", err)
	}
	if !strings.Contains(logBuf.String(), "not yet indexed") {
		t.Error("dropped unindexed rows should be logged")
	}
	var got []string
	for _, r := range rows {
		got = append(got, string(r.AlbumID)+"/"+r.Filename)
	}
	want := []string{"a1/m1.jpg", "a1/m2.jpg", "a2/m3.jpg"}
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rows = %v, want %v", got, want)
		}
	}
	if rows[0].AlbumTitle != "First" || !rows[0].EndDate.Equal(utc("2020-06-15")) {
		t.Errorf("join columns = %+v", rows[0])
	}

	// inverted order flips positions within each album
	rows, err = albumFiles.ListOrdered(true, true)
	if err != nil {
		t.Fatalf("ListOrdered invert: %v", err)
	}
	if rows[0].Filename != "m2.jpg" || rows[1].Filename != "m1.jpg" {
		t.Errorf("inverted rows start with %s, %s; want m2.jpg, m1.jpg", rows[0].Filename, rows[1].Filename)
	}

	// processed albums drop out unless a full relink is requested
	if err := albums.MarkDownloaded("a1"); err != nil {
		t.Fatal(err)
	}
	rows, err = albumFiles.ListOrdered(false, false)
	if err != nil {
		t.Fatalf("ListOrdered filtered: %v", err)
	}
	if len(rows) != 1 || rows[0].AlbumID != "a2" {
		t.Errorf("filtered rows = %+v, want only a2", rows)
	}
	rows, err = albumFiles.ListOrdered(false, true)
	if err != nil {
		t.Fatalf("ListOrdered downloadAgain: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("downloadAgain rows = %d, want 3", len(rows))
	}
}

func TestRunRepositoryLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewRunRepository(db)

	run := &models.SyncRun{ID: "run-1"}
	if err := repo.Create(run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if run.StartedAt == 0 {
		t.Error("Create should stamp StartedAt")
	}

	run.AlbumsIndexed = 4
	run.LinksCreated = 20
	if err := repo.Finish(run, errors.New("listing albums: boom")); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	var got models.SyncRun
	if err := db.Where("id = ?", "run-1").First(&got).Error; err != nil {
		t.Fatal(err)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt should be set")
	}
	if got.AlbumsIndexed != 4 || got.LinksCreated != 20 {
		t.Errorf("counters = %d, %d; want 4, 20", got.AlbumsIndexed, got.LinksCreated)
	}
	if got.Error == nil || *got.Error != "listing albums: boom" {
		t.Errorf("Error = %v, want the run error string", got.Error)
	}
}
