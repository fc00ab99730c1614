package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
	"Hegemony/internal/game/infra/persistence/mapper"
	"Hegemony/internal/game/infra/persistence/model"
)

const defaultReportCollectionName = "report"

const (
	OpSaveReport     = "repo.report.Save"
	OpGetReport      = "repo.report.Get"
	OpListReports    = "repo.report.ListByRecipient"
	OpMarkReportRead = "repo.report.MarkRead"
	OpEnsureIndexes  = "repo.report.EnsureIndexes"
)

var errNilCollection = errors.New("mongodb report collection is nil")

type ReportRepo struct {
	coll *mongo.Collection
}

var _ port.ReportRepository = (*ReportRepo)(nil)

func NewReportRepo(db *mongo.Database) *ReportRepo {
	if db == nil {
		return &ReportRepo{}
	}
	return &ReportRepo{coll: db.Collection(defaultReportCollectionName)}
}

// EnsureIndexes 按接收者 + 时间倒序的列表索引。
func (r *ReportRepo) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.coll == nil {
		return wrap(OpEnsureIndexes, errNilCollection, nil)
	}
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipients", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	return wrap(OpEnsureIndexes, err, nil)
}

// Save 战报正文只在首次插入时写入，重复投递不会覆盖 read_by。
func (r *ReportRepo) Save(ctx context.Context, rep *domain.Report) error {
	if rep == nil {
		return nil
	}
	if r == nil || r.coll == nil {
		return wrap(OpSaveReport, errNilCollection, nil)
	}
	doc, err := mapper.ReportToDoc(rep)
	if err != nil {
		return wrap(OpSaveReport, err, map[string]any{"report_id": rep.ID})
	}
	update := bson.M{"$setOnInsert": bson.M{
		"kind":        doc.Kind,
		"army_id":     doc.ArmyID,
		"occurred_at": doc.OccurredAt,
		"recipients":  doc.Recipients,
		"read_by":     doc.ReadBy,
		"payload":     doc.Payload,
	}}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, update, options.UpdateOne().SetUpsert(true))
	return wrap(OpSaveReport, err, map[string]any{"report_id": rep.ID})
}

func (r *ReportRepo) Get(ctx context.Context, id string) (*domain.Report, error) {
	if r == nil || r.coll == nil {
		return nil, wrap(OpGetReport, errNilCollection, nil)
	}
	var doc model.ReportDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrReportNotFound.WithData("report_id", id)
	}
	if err != nil {
		return nil, wrap(OpGetReport, err, map[string]any{"report_id": id})
	}
	rep, err := mapper.ReportFromDoc(&doc)
	return rep, wrap(OpGetReport, err, map[string]any{"report_id": id})
}

func (r *ReportRepo) ListByRecipient(ctx context.Context, player domain.PlayerID, limit int) ([]domain.Report, error) {
	if r == nil || r.coll == nil {
		return nil, wrap(OpListReports, errNilCollection, nil)
	}
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, bson.M{"recipients": int64(player)}, opts)
	if err != nil {
		return nil, wrap(OpListReports, err, map[string]any{"player_id": int64(player)})
	}
	var docs []model.ReportDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap(OpListReports, err, map[string]any{"player_id": int64(player)})
	}
	out := make([]domain.Report, 0, len(docs))
	for i := range docs {
		rep, err := mapper.ReportFromDoc(&docs[i])
		if err != nil {
			return nil, wrap(OpListReports, err, nil)
		}
		out = append(out, *rep)
	}
	return out, nil
}

// MarkRead 只有接收者能标记，$addToSet 保证重复标记无副作用。
func (r *ReportRepo) MarkRead(ctx context.Context, id string, player domain.PlayerID) error {
	if r == nil || r.coll == nil {
		return wrap(OpMarkReportRead, errNilCollection, nil)
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "recipients": int64(player)},
		bson.M{"$addToSet": bson.M{"read_by": int64(player)}},
	)
	if err != nil {
		return wrap(OpMarkReportRead, err, map[string]any{"report_id": id})
	}
	if res.MatchedCount > 0 {
		return nil
	}
	// 没匹配上：区分报告不存在和非接收者
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return domain.ErrNotOwner.WithData("report_id", id)
}
