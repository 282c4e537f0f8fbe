package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
)

const collectionAttendance = "attendances"

// AttendanceRepository implements ports.AttendanceRepository. Dates are
// stored as the instant of local midnight; loc turns them back into
// calendar days.
type AttendanceRepository struct {
	col *mongo.Collection
	loc *time.Location
}

func NewAttendanceRepository(db *mongo.Database, loc *time.Location) *AttendanceRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceRepository{col: db.Collection(collectionAttendance), loc: loc}
}

type attendanceDoc struct {
	ID                  primitive.ObjectID         `bson:"_id,omitempty"`
	UserID              string                     `bson:"user_id"`
	Date                time.Time                  `bson:"date"`
	Status              string                     `bson:"status"`
	MarkedAt            time.Time                  `bson:"marked_at"`
	IsLateMarking       bool                       `bson:"is_late_marking"`
	Notes               string                     `bson:"notes,omitempty"`
	IsPlanned           bool                       `bson:"is_planned"`
	PlanDate            *time.Time                 `bson:"plan_date,omitempty"`
	ModificationHistory []domain.ModificationEntry `bson:"modification_history"`
	CreatedAt           time.Time                  `bson:"created_at"`
	UpdatedAt           time.Time                  `bson:"updated_at"`
}

func toAttendanceDoc(r *domain.AttendanceRecord) attendanceDoc {
	history := r.ModificationHistory
	if history == nil {
		history = []domain.ModificationEntry{}
	}
	return attendanceDoc{
		UserID:              r.UserID,
		Date:                r.Date.UTC(),
		Status:              string(r.Status),
		MarkedAt:            r.MarkedAt.UTC(),
		IsLateMarking:       r.IsLateMarking,
		Notes:               r.Notes,
		IsPlanned:           r.IsPlanned,
		PlanDate:            r.PlanDate,
		ModificationHistory: history,
		CreatedAt:           r.CreatedAt.UTC(),
		UpdatedAt:           r.UpdatedAt.UTC(),
	}
}

func (r *AttendanceRepository) toDomain(d attendanceDoc) *domain.AttendanceRecord {
	var planDate *time.Time
	if d.PlanDate != nil {
		p := d.PlanDate.In(r.loc)
		planDate = &p
	}
	history := make([]domain.ModificationEntry, len(d.ModificationHistory))
	for i, e := range d.ModificationHistory {
		e.ModifiedAt = e.ModifiedAt.In(r.loc)
		history[i] = e
	}
	return &domain.AttendanceRecord{
		ID:                  d.ID.Hex(),
		UserID:              d.UserID,
		Date:                d.Date.In(r.loc),
		Status:              domain.AttendanceStatus(d.Status),
		MarkedAt:            d.MarkedAt.In(r.loc),
		IsLateMarking:       d.IsLateMarking,
		Notes:               d.Notes,
		IsPlanned:           d.IsPlanned,
		PlanDate:            planDate,
		ModificationHistory: history,
		CreatedAt:           d.CreatedAt.In(r.loc),
		UpdatedAt:           d.UpdatedAt.In(r.loc),
	}
}

func dayFilter(userID string, date time.Time) bson.M {
	return bson.M{"user_id": userID, "date": date.UTC()}
}

func rangeFilter(from, to time.Time) bson.M {
	date := bson.M{}
	if !from.IsZero() {
		date["$gte"] = from.UTC()
	}
	if !to.IsZero() {
		date["$lte"] = to.UTC()
	}
	if len(date) == 0 {
		return bson.M{}
	}
	return bson.M{"date": date}
}

func (r *AttendanceRepository) FindOne(ctx context.Context, userID string, date time.Time) (*domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc attendanceDoc
	if err := r.col.FindOne(ctx, dayFilter(userID, date)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAttendanceNotFound
		}
		return nil, wrapErr("find attendance", err)
	}
	return r.toDomain(doc), nil
}

// Insert relies on the unique (user_id, date) index to reject a second record
// for the same day.
func (r *AttendanceRepository) Insert(ctx context.Context, rec *domain.AttendanceRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toAttendanceDoc(rec))
	if err != nil {
		return wrapErr("insert attendance", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = oid.Hex()
	}
	return nil
}

// Update overwrites the mutable fields and appends entry in one atomic write.
func (r *AttendanceRepository) Update(ctx context.Context, rec *domain.AttendanceRecord, entry domain.ModificationEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":     string(rec.Status),
			"notes":      rec.Notes,
			"marked_at":  rec.MarkedAt.UTC(),
			"updated_at": rec.UpdatedAt.UTC(),
		},
		"$push": bson.M{"modification_history": entry},
	}

	res, err := r.col.UpdateOne(ctx, dayFilter(rec.UserID, rec.Date), update)
	if err != nil {
		return wrapErr("update attendance", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAttendanceNotFound
	}
	return nil
}

func (r *AttendanceRepository) Delete(ctx context.Context, userID string, date time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, dayFilter(userID, date))
	if err != nil {
		return wrapErr("delete attendance", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAttendanceNotFound
	}
	return nil
}

func (r *AttendanceRepository) Count(ctx context.Context, from, to time.Time, status domain.AttendanceStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := rangeFilter(from, to)
	if status != "" {
		filter["status"] = string(status)
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, wrapErr("count attendance", err)
	}
	return n, nil
}

func (r *AttendanceRepository) CountByStatus(ctx context.Context, from, to time.Time) ([]domain.StatusCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: rangeFilter(from, to)}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapErr("count attendance by status", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrapErr("decode status counts", err)
	}

	out := make([]domain.StatusCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.StatusCount{Status: domain.AttendanceStatus(row.Status), Count: row.Count})
	}
	return out, nil
}

func (r *AttendanceRepository) List(ctx context.Context, f ports.AttendanceFilter) ([]*domain.AttendanceRecord, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := rangeFilter(f.From, f.To)
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapErr("count attendance", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if f.Page > 0 && f.Limit > 0 {
		opts.SetSkip(int64((f.Page - 1) * f.Limit)).SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, wrapErr("list attendance", err)
	}
	defer cur.Close(ctx)

	var docs []attendanceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, wrapErr("decode attendance", err)
	}

	records := make([]*domain.AttendanceRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, r.toDomain(d))
	}
	return records, total, nil
}

// DailyCounts groups on the stored midnight instant, which identifies the
// calendar day without needing the server's time zone.
func (r *AttendanceRepository) DailyCounts(ctx context.Context, from, to time.Time) ([]domain.DailyStatusCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: rangeFilter(from, to)}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"date": "$date", "status": "$status"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.date", Value: 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapErr("daily attendance counts", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			Date   time.Time `bson:"date"`
			Status string    `bson:"status"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrapErr("decode daily counts", err)
	}

	byDay := make(map[string]*domain.DailyStatusCounts)
	var days []string
	for _, row := range rows {
		key := row.ID.Date.In(r.loc).Format(time.DateOnly)
		d, ok := byDay[key]
		if !ok {
			d = &domain.DailyStatusCounts{Date: key, Counts: make(map[domain.AttendanceStatus]int64)}
			byDay[key] = d
			days = append(days, key)
		}
		d.Counts[domain.AttendanceStatus(row.ID.Status)] += row.Count
		d.Total += row.Count
	}
	sort.Strings(days)

	out := make([]domain.DailyStatusCounts, 0, len(days))
	for _, k := range days {
		out = append(out, *byDay[k])
	}
	return out, nil
}

// EnsureIndexes creates the attendance indexes. The (user_id, date) index is
// unique: one record per user per day.
func (r *AttendanceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_date_unique"),
		},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create attendance indexes: %w", err)
	}
	return nil
}
