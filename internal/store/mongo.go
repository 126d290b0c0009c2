package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kardelen-edu/insight/internal/domain"
)

// Collection names shared with the session runner.
const (
	collSessions   = "sessions"
	collChildren   = "children"
	collLessons    = "lessons"
	collLLMReports = "llm_reports"
)

// Mongo implements SessionStore and ReportStore over MongoDB.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to MongoDB and prepares the llm_reports collection.
func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	m := &Mongo{client: client, db: client.Database(dbName)}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return m, nil
}

// ensureIndexes creates the unique session_id index that backs the
// one-report-per-session guarantee.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(collLLMReports).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create llm_reports index: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}

// sessionDoc mirrors the session runner's document layout, where session,
// child and lesson references are ObjectIDs.
type sessionDoc struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty"`
	LessonID          primitive.ObjectID  `bson:"lesson_id,omitempty"`
	ChildID           primitive.ObjectID  `bson:"child_id,omitempty"`
	StartedAt         time.Time           `bson:"started_at,omitempty"`
	CompletedAt       *time.Time          `bson:"completed_at,omitempty"`
	Status            string              `bson:"status,omitempty"`
	TotalScore        *int                `bson:"total_score,omitempty"`
	StepResults       []domain.StepResult `bson:"step_results,omitempty"`
	LLMAnalysisStatus string              `bson:"llm_analysis_status,omitempty"`
	LLMAnalysisReport string              `bson:"llm_analysis_report,omitempty"`
}

func (d *sessionDoc) toDomain() *domain.Session {
	return &domain.Session{
		ID:                d.ID.Hex(),
		LessonID:          d.LessonID.Hex(),
		ChildID:           d.ChildID.Hex(),
		StartedAt:         d.StartedAt,
		CompletedAt:       d.CompletedAt,
		Status:            d.Status,
		TotalScore:        d.TotalScore,
		StepResults:       d.StepResults,
		LLMAnalysisStatus: d.LLMAnalysisStatus,
		LLMAnalysisReport: d.LLMAnalysisReport,
	}
}

type childDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name,omitempty"`
	Birthdate *time.Time         `bson:"birthdate,omitempty"`
}

type lessonDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"lesson_name,omitempty"`
}

type reportDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SessionID   string             `bson:"session_id"`
	ChildID     string             `bson:"child_id"`
	StepReports domain.StepReports `bson:"step_reports"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
	FinalizedAt *time.Time         `bson:"finalized_at,omitempty"`
}

func (d *reportDoc) toDomain() *domain.AnalysisReport {
	return &domain.AnalysisReport{
		ID:          d.ID.Hex(),
		SessionID:   d.SessionID,
		ChildID:     d.ChildID,
		StepReports: d.StepReports,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		FinalizedAt: d.FinalizedAt,
	}
}

// GetSession retrieves a session by its ID.
func (m *Mongo) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	oid, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		// An ID that cannot exist behaves like one that does not exist.
		return nil, ErrNotFound
	}

	var doc sessionDoc
	err = m.db.Collection(collSessions).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	return doc.toDomain(), nil
}

// GetChild retrieves a child profile by its ID.
func (m *Mongo) GetChild(ctx context.Context, childID string) (*domain.Child, error) {
	oid, err := primitive.ObjectIDFromHex(childID)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc childDoc
	err = m.db.Collection(collChildren).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find child: %w", err)
	}

	return &domain.Child{ID: doc.ID.Hex(), Name: doc.Name, Birthdate: doc.Birthdate}, nil
}

// GetLesson retrieves a lesson by its ID.
func (m *Mongo) GetLesson(ctx context.Context, lessonID string) (*domain.Lesson, error) {
	oid, err := primitive.ObjectIDFromHex(lessonID)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc lessonDoc
	err = m.db.Collection(collLessons).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lesson: %w", err)
	}

	return &domain.Lesson{ID: doc.ID.Hex(), Name: doc.Name}, nil
}

// InsertReport stores a new report and assigns its ID.
func (m *Mongo) InsertReport(ctx context.Context, report *domain.AnalysisReport) error {
	doc := reportDoc{
		SessionID:   report.SessionID,
		ChildID:     report.ChildID,
		StepReports: report.StepReports,
		CreatedAt:   report.CreatedAt,
		UpdatedAt:   report.UpdatedAt,
		FinalizedAt: report.FinalizedAt,
	}

	res, err := m.db.Collection(collLLMReports).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert report: unexpected inserted ID type %T", res.InsertedID)
	}
	report.ID = oid.Hex()

	return nil
}

// GetReportBySession retrieves the report for a session.
func (m *Mongo) GetReportBySession(ctx context.Context, sessionID string) (*domain.AnalysisReport, error) {
	var doc reportDoc
	err := m.db.Collection(collLLMReports).FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find report: %w", err)
	}

	return doc.toDomain(), nil
}

// UpdateReport replaces the mutable fields of an existing report.
func (m *Mongo) UpdateReport(ctx context.Context, report *domain.AnalysisReport) error {
	oid, err := primitive.ObjectIDFromHex(report.ID)
	if err != nil {
		return ErrNotFound
	}

	set := bson.M{
		"step_reports": report.StepReports,
		"updated_at":   report.UpdatedAt,
	}
	if report.FinalizedAt != nil {
		set["finalized_at"] = report.FinalizedAt
	}

	res, err := m.db.Collection(collLLMReports).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}
