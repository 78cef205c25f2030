package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"
)

// FailedJob is a job that exhausted its attempts.
type FailedJob struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Payload  string    `json:"payload"`
	Error    string    `json:"error"`
	Attempts int       `json:"attempts"`
	FailedAt time.Time `json:"failedAt"`
}

// FailedStore is the failed-job log.
type FailedStore interface {
	Record(ctx context.Context, job FailedJob) error
	List(ctx context.Context) ([]FailedJob, error)
	Get(ctx context.Context, id string) (FailedJob, error)
	Forget(ctx context.Context, id string) error
}

// ─── Memory ───────────────────────────────────────────────────────────────────

type MemoryFailedStore struct {
	mu   sync.Mutex
	seq  int
	jobs []FailedJob
}

func NewMemoryFailedStore() *MemoryFailedStore { return &MemoryFailedStore{} }

func (s *MemoryFailedStore) Record(_ context.Context, job FailedJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	job.ID = strconv.Itoa(s.seq)
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *MemoryFailedStore) List(context.Context) ([]FailedJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FailedJob(nil), s.jobs...), nil
}

func (s *MemoryFailedStore) Get(_ context.Context, id string) (FailedJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return FailedJob{}, ErrFailedJobNotFound
}

func (s *MemoryFailedStore) Forget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, j := range s.jobs {
		if j.ID == id {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			return nil
		}
	}
	return ErrFailedJobNotFound
}

// ─── Database ─────────────────────────────────────────────────────────────────

// FailedJobRecord is the failed_jobs row.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// DBFailedStore keeps failed jobs in a SQL table. The table is created by
// the migrations.
type DBFailedStore struct {
	db *gorm.DB
}

func NewDBFailedStore(db *gorm.DB) *DBFailedStore { return &DBFailedStore{db: db} }

func (s *DBFailedStore) Record(ctx context.Context, job FailedJob) error {
	rec := FailedJobRecord{
		JobType:  job.Type,
		Payload:  job.Payload,
		Error:    job.Error,
		Attempts: job.Attempts,
		FailedAt: job.FailedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("queue: record failed job: %w", err)
	}
	return nil
}

func (s *DBFailedStore) List(ctx context.Context) ([]FailedJob, error) {
	var recs []FailedJobRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("queue: list failed jobs: %w", err)
	}
	out := make([]FailedJob, len(recs))
	for i, r := range recs {
		out[i] = r.toJob()
	}
	return out, nil
}

func (s *DBFailedStore) Get(ctx context.Context, id string) (FailedJob, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return FailedJob{}, ErrFailedJobNotFound
	}
	var rec FailedJobRecord
	err = s.db.WithContext(ctx).First(&rec, n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FailedJob{}, ErrFailedJobNotFound
	}
	if err != nil {
		return FailedJob{}, fmt.Errorf("queue: get failed job: %w", err)
	}
	return rec.toJob(), nil
}

func (s *DBFailedStore) Forget(ctx context.Context, id string) error {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return ErrFailedJobNotFound
	}
	res := s.db.WithContext(ctx).Delete(&FailedJobRecord{}, n)
	if res.Error != nil {
		return fmt.Errorf("queue: forget failed job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFailedJobNotFound
	}
	return nil
}

func (r FailedJobRecord) toJob() FailedJob {
	return FailedJob{
		ID:       strconv.FormatUint(uint64(r.ID), 10),
		Type:     r.JobType,
		Payload:  r.Payload,
		Error:    r.Error,
		Attempts: r.Attempts,
		FailedAt: r.FailedAt,
	}
}
