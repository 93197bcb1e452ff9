package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"certdesk/internal/models"
)

func testCertificate(templateID, serial string) *models.IssuedCertificate {
	return &models.IssuedCertificate{
		RecipientName:  "Jane Doe",
		RecipientEmail: "jane@example.com",
		TemplateID:     templateID,
		IssueDate:      time.Now().UTC().Truncate(time.Millisecond),
		SerialNumber:   serial,
		Bucket:         "test",
		FileKey:        "certificates/" + serial + ".pdf",
		FileName:       "certificate_Jane_Doe.pdf",
		CustomData:     map[string]string{"course": "Intro to Baking"},
		IssuedBy:       "tester",
	}
}

func TestCertificateStore_CreateAndFind(t *testing.T) {
	db := testDB(t)
	tpl := createTestTemplate(t, db, "cert-test-create")
	cs := NewCertificateStore(db)

	created, err := cs.Create(testCertificate(tpl.ID, "CERT-TEST-CRE01"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create() returned empty ID")
	}
	if created.Status != models.StatusIssued {
		t.Errorf("Status = %q, want %q", created.Status, models.StatusIssued)
	}
	if created.DownloadCount != 0 {
		t.Errorf("DownloadCount = %d, want 0", created.DownloadCount)
	}

	found, err := cs.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID() error: %v", err)
	}
	if found == nil {
		t.Fatal("FindByID() returned nil for existing certificate")
	}
	if found.CustomData["course"] != "Intro to Baking" {
		t.Errorf("CustomData round-trip failed: %+v", found.CustomData)
	}

	bySerial, err := cs.FindBySerial("CERT-TEST-CRE01")
	if err != nil {
		t.Fatalf("FindBySerial() error: %v", err)
	}
	if bySerial == nil || bySerial.ID != created.ID {
		t.Errorf("FindBySerial() = %+v, want certificate %s", bySerial, created.ID)
	}
}

func TestCertificateStore_DuplicateSerial(t *testing.T) {
	db := testDB(t)
	tpl := createTestTemplate(t, db, "cert-test-dup")
	cs := NewCertificateStore(db)

	if _, err := cs.Create(testCertificate(tpl.ID, "CERT-TEST-DUP01")); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}

	_, err := cs.Create(testCertificate(tpl.ID, "CERT-TEST-DUP01"))
	if !errors.Is(err, ErrDuplicateSerial) {
		t.Errorf("second Create() error = %v, want ErrDuplicateSerial", err)
	}
}

func TestCertificateStore_RecordDownload(t *testing.T) {
	db := testDB(t)
	tpl := createTestTemplate(t, db, "cert-test-download")
	cs := NewCertificateStore(db)

	created, err := cs.Create(testCertificate(tpl.ID, "CERT-TEST-DWN01"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	updated, err := cs.RecordDownload(created.ID)
	if err != nil {
		t.Fatalf("RecordDownload() error: %v", err)
	}
	if updated == nil {
		t.Fatal("RecordDownload() returned nil for existing certificate")
	}
	if updated.Status != models.StatusDownloaded {
		t.Errorf("Status = %q, want %q", updated.Status, models.StatusDownloaded)
	}
	if updated.DownloadCount != 1 {
		t.Errorf("DownloadCount = %d, want 1", updated.DownloadCount)
	}
	if updated.LastDownloaded == nil {
		t.Error("LastDownloaded not stamped")
	}

	// Second download counts but keeps the status.
	updated, err = cs.RecordDownload(created.ID)
	if err != nil {
		t.Fatalf("second RecordDownload() error: %v", err)
	}
	if updated.Status != models.StatusDownloaded {
		t.Errorf("Status after second download = %q, want %q", updated.Status, models.StatusDownloaded)
	}
	if updated.DownloadCount != 2 {
		t.Errorf("DownloadCount = %d, want 2", updated.DownloadCount)
	}
}

func TestCertificateStore_RecordDownload_Missing(t *testing.T) {
	db := testDB(t)
	cs := NewCertificateStore(db)

	updated, err := cs.RecordDownload("00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("RecordDownload() error: %v", err)
	}
	if updated != nil {
		t.Errorf("RecordDownload() = %+v, want nil", updated)
	}
}

func TestCertificateStore_RecordDownload_DoesNotReviveExpired(t *testing.T) {
	db := testDB(t)
	tpl := createTestTemplate(t, db, "cert-test-expired")
	cs := NewCertificateStore(db)

	created, err := cs.Create(testCertificate(tpl.ID, "CERT-TEST-EXP01"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := db.Exec("UPDATE issued_certificates SET status = 'expired' WHERE id = $1", created.ID); err != nil {
		t.Fatalf("force expire: %v", err)
	}

	updated, err := cs.RecordDownload(created.ID)
	if err != nil {
		t.Fatalf("RecordDownload() error: %v", err)
	}
	if updated.Status != models.StatusExpired {
		t.Errorf("Status = %q, want expired to stay expired", updated.Status)
	}
	if updated.DownloadCount != 1 {
		t.Errorf("DownloadCount = %d, want 1", updated.DownloadCount)
	}
}

func TestCertificateStore_ExpireOverdue(t *testing.T) {
	db := testDB(t)
	tpl := createTestTemplate(t, db, "cert-test-overdue")
	cs := NewCertificateStore(db)

	past := time.Now().Add(-24 * time.Hour)
	overdue := testCertificate(tpl.ID, "CERT-TEST-OVR01")
	overdue.ExpiryDate = &past
	if _, err := cs.Create(overdue); err != nil {
		t.Fatalf("Create() overdue error: %v", err)
	}

	future := time.Now().Add(24 * time.Hour)
	current := testCertificate(tpl.ID, "CERT-TEST-OVR02")
	current.ExpiryDate = &future
	stillValid, err := cs.Create(current)
	if err != nil {
		t.Fatalf("Create() current error: %v", err)
	}

	if _, err := cs.ExpireOverdue(); err != nil {
		t.Fatalf("ExpireOverdue() error: %v", err)
	}

	expired, err := cs.FindBySerial("CERT-TEST-OVR01")
	if err != nil {
		t.Fatalf("FindBySerial() error: %v", err)
	}
	if expired.Status != models.StatusExpired {
		t.Errorf("overdue certificate status = %q, want expired", expired.Status)
	}

	valid, err := cs.FindByID(stillValid.ID)
	if err != nil {
		t.Fatalf("FindByID() error: %v", err)
	}
	if valid.Status != models.StatusIssued {
		t.Errorf("future-dated certificate status = %q, want issued", valid.Status)
	}
}

func TestCertificateStore_ListFilters(t *testing.T) {
	db := testDB(t)
	tpl := createTestTemplate(t, db, "cert-test-list")
	cs := NewCertificateStore(db)

	a := testCertificate(tpl.ID, "CERT-TEST-LST01")
	b := testCertificate(tpl.ID, "CERT-TEST-LST02")
	b.RecipientEmail = "other@example.com"
	for _, c := range []*models.IssuedCertificate{a, b} {
		if _, err := cs.Create(c); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	all, err := cs.List(ListFilter{TemplateID: tpl.ID})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List() returned %d rows, want 2", len(all))
	}

	byEmail, err := cs.List(ListFilter{TemplateID: tpl.ID, RecipientEmail: "other@example.com"})
	if err != nil {
		t.Fatalf("List() by email error: %v", err)
	}
	if len(byEmail) != 1 || byEmail[0].SerialNumber != "CERT-TEST-LST02" {
		t.Errorf("email filter returned %+v, want only LST02", byEmail)
	}

	count, err := cs.Count(ListFilter{TemplateID: tpl.ID, Status: "issued"})
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	bySearch, err := cs.List(ListFilter{TemplateID: tpl.ID, Search: "LST02"})
	if err != nil {
		t.Fatalf("List() by search error: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].SerialNumber != "CERT-TEST-LST02" {
		t.Errorf("serial search returned %+v, want only LST02", bySearch)
	}
}

func TestCertificateStore_Stats(t *testing.T) {
	db := testDB(t)
	tpl := createTestTemplate(t, db, "cert-test-stats")
	cs := NewCertificateStore(db)

	created, err := cs.Create(testCertificate(tpl.ID, "CERT-TEST-STA01"))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := cs.RecordDownload(created.ID); err != nil {
		t.Fatalf("RecordDownload() error: %v", err)
	}
	if _, err := cs.RecordDownload(created.ID); err != nil {
		t.Fatalf("RecordDownload() error: %v", err)
	}

	counts, err := cs.CountByStatus()
	if err != nil {
		t.Fatalf("CountByStatus() error: %v", err)
	}
	if counts["downloaded"] < 1 {
		t.Errorf("CountByStatus()[downloaded] = %d, want >= 1", counts["downloaded"])
	}

	total, err := cs.TotalDownloads()
	if err != nil {
		t.Fatalf("TotalDownloads() error: %v", err)
	}
	if total < 2 {
		t.Errorf("TotalDownloads() = %d, want >= 2", total)
	}
}

func TestCertificateStore_ConcurrentIssuance(t *testing.T) {
	db := testDB(t)
	tpl := createTestTemplate(t, db, "cert-test-concurrent")
	cs := NewCertificateStore(db)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			serial := fmt.Sprintf("CERT-TEST-CON%02d", n)
			if _, err := cs.Create(testCertificate(tpl.ID, serial)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Create() error: %v", err)
	}

	count, err := cs.Count(ListFilter{TemplateID: tpl.ID})
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != workers {
		t.Errorf("Count() = %d, want %d", count, workers)
	}
}
