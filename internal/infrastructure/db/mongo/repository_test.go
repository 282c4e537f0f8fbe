package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestWrapErr(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}

	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"duplicate key", dup, domain.ErrConflict},
		{"disconnected", mongo.ErrClientDisconnected, domain.ErrUnavailable},
		{"deadline", context.DeadlineExceeded, domain.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := wrapErr("op", tt.err); !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
		})
	}

	if wrapErr("op", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	plain := errors.New("boom")
	if err := wrapErr("op", plain); !errors.Is(err, plain) || errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("unexpected wrap: %v", err)
	}
}

func TestAttendanceDoc_KeepsCalendarDay(t *testing.T) {
	repo := &AttendanceRepository{loc: ist}
	day := time.Date(2026, time.February, 16, 0, 0, 0, 0, ist)
	rec := &domain.AttendanceRecord{
		UserID:   "u1",
		Date:     day,
		Status:   domain.StatusOffice,
		MarkedAt: time.Date(2026, time.February, 16, 9, 0, 0, 0, ist),
	}

	doc := toAttendanceDoc(rec)
	if doc.Date.Location() != time.UTC || doc.Date.Day() != 15 {
		t.Fatalf("expected UTC instant of local midnight, got %v", doc.Date)
	}
	if doc.ModificationHistory == nil {
		t.Fatalf("history must be stored as an empty array, not null")
	}

	back := repo.toDomain(doc)
	if !back.Date.Equal(day) || back.Date.Day() != 16 || back.Date.Location() != ist {
		t.Fatalf("expected local calendar day back, got %v", back.Date)
	}
}

func TestAttendanceDoc_TimestampsInServiceZone(t *testing.T) {
	repo := &AttendanceRepository{loc: ist}
	stamp := time.Date(2026, time.February, 13, 4, 30, 0, 0, time.UTC)
	doc := attendanceDoc{
		Date:      time.Date(2026, time.February, 15, 18, 30, 0, 0, time.UTC),
		MarkedAt:  stamp,
		PlanDate:  &stamp,
		CreatedAt: stamp,
		UpdatedAt: stamp,
		ModificationHistory: []domain.ModificationEntry{
			{PreviousStatus: domain.StatusOffice, NewStatus: domain.StatusHome, ModifiedAt: stamp},
		},
	}

	rec := repo.toDomain(doc)

	for name, ts := range map[string]time.Time{
		"marked_at":   rec.MarkedAt,
		"plan_date":   *rec.PlanDate,
		"created_at":  rec.CreatedAt,
		"updated_at":  rec.UpdatedAt,
		"modified_at": rec.ModificationHistory[0].ModifiedAt,
	} {
		if ts.Location() != ist || !ts.Equal(stamp) {
			t.Fatalf("%s: expected %v in IST, got %v", name, stamp, ts)
		}
	}
	if doc.PlanDate.Location() != time.UTC || doc.ModificationHistory[0].ModifiedAt.Location() != time.UTC {
		t.Fatalf("stored document must not be modified")
	}
}

func TestRangeFilter(t *testing.T) {
	from := time.Date(2026, time.February, 1, 0, 0, 0, 0, ist)
	to := time.Date(2026, time.February, 28, 0, 0, 0, 0, ist)

	f := rangeFilter(from, to)
	date, ok := f["date"].(bson.M)
	if !ok || len(date) != 2 {
		t.Fatalf("expected $gte and $lte, got %v", f)
	}
	if len(rangeFilter(time.Time{}, time.Time{})) != 0 {
		t.Fatalf("open range must not filter")
	}
}

func TestAttendanceRepository_Mocked(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find one not found", func(mt *mtest.T) {
		repo := &AttendanceRepository{col: mt.Coll, loc: ist}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "attendance.attendances", mtest.FirstBatch))

		_, err := repo.FindOne(context.Background(), "u1", time.Date(2026, time.February, 16, 0, 0, 0, 0, ist))
		if !errors.Is(err, domain.ErrAttendanceNotFound) {
			mt.Fatalf("expected ErrAttendanceNotFound, got %v", err)
		}
	})

	mt.Run("insert sets id", func(mt *mtest.T) {
		repo := &AttendanceRepository{col: mt.Coll, loc: ist}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec := &domain.AttendanceRecord{UserID: "u1", Date: time.Date(2026, time.February, 16, 0, 0, 0, 0, ist), Status: domain.StatusHome}
		if err := repo.Insert(context.Background(), rec); err != nil {
			mt.Fatalf("Insert returned error: %v", err)
		}
		if rec.ID == "" {
			mt.Fatalf("expected id to be set")
		}
	})

	mt.Run("insert duplicate is a conflict", func(mt *mtest.T) {
		repo := &AttendanceRepository{col: mt.Coll, loc: ist}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := repo.Insert(context.Background(), &domain.AttendanceRecord{UserID: "u1", Date: time.Now()})
		if !errors.Is(err, domain.ErrConflict) {
			mt.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	mt.Run("daily counts", func(mt *mtest.T) {
		repo := &AttendanceRepository{col: mt.Coll, loc: ist}
		mon := time.Date(2026, time.February, 16, 0, 0, 0, 0, ist).UTC()
		tue := time.Date(2026, time.February, 17, 0, 0, 0, 0, ist).UTC()
		group := func(day time.Time, status string, n int64) bson.D {
			return bson.D{
				{Key: "_id", Value: bson.D{{Key: "date", Value: day}, {Key: "status", Value: status}}},
				{Key: "count", Value: n},
			}
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "attendance.attendances", mtest.FirstBatch,
			group(tue, "home", 1),
			group(mon, "office", 3),
			group(mon, "leave", 1),
		))

		days, err := repo.DailyCounts(context.Background(), time.Time{}, time.Time{})
		if err != nil {
			mt.Fatalf("DailyCounts returned error: %v", err)
		}
		if len(days) != 2 || days[0].Date != "2026-02-16" || days[1].Date != "2026-02-17" {
			mt.Fatalf("unexpected days: %+v", days)
		}
		if days[0].Counts[domain.StatusOffice] != 3 || days[0].Counts[domain.StatusLeave] != 1 || days[0].Total != 4 {
			mt.Fatalf("unexpected monday counts: %+v", days[0])
		}
		if days[1].Counts[domain.StatusHome] != 1 || days[1].Total != 1 {
			mt.Fatalf("unexpected tuesday counts: %+v", days[1])
		}
	})

	mt.Run("update without match", func(mt *mtest.T) {
		repo := &AttendanceRepository{col: mt.Coll, loc: ist}
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.Update(context.Background(), &domain.AttendanceRecord{UserID: "u1", Date: time.Now()}, domain.ModificationEntry{})
		if !errors.Is(err, domain.ErrAttendanceNotFound) {
			mt.Fatalf("expected ErrAttendanceNotFound, got %v", err)
		}
	})
}

func TestUserRepository_Mocked(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		_, err := repo.Create(context.Background(), &domain.User{Email: "a@example.com"})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}

		if _, err := repo.FindByID(context.Background(), "not-hex"); !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := &UserRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "attendance.users", mtest.FirstBatch, bson.D{
			{Key: "name", Value: "Chef Mike"},
			{Key: "email", Value: "chef@demo.com"},
			{Key: "role", Value: domain.RoleChef},
			{Key: "is_active", Value: true},
			{Key: "email_notifications", Value: true},
		}))

		u, err := repo.FindByEmail(context.Background(), "chef@demo.com")
		if err != nil {
			mt.Fatalf("FindByEmail returned error: %v", err)
		}
		if u.Role != domain.RoleChef || !u.WantsEmail() || u.WantsPush() {
			mt.Fatalf("unexpected user: %+v", u)
		}
	})
}
