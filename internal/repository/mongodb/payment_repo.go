package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inviteplanner/internal/domain"
)

type paymentDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Amount          float64            `bson:"amount"`
	Currency        string             `bson:"currency"`
	PaymentMethod   string             `bson:"paymentMethod"`
	ReferenceNumber string             `bson:"referenceNumber"`
	Description     string             `bson:"description"`
	PlanType        string             `bson:"planType"`
	Status          string             `bson:"status"`
	UsedAt          *time.Time         `bson:"usedAt,omitempty"`
	UsedBy          string             `bson:"usedBy,omitempty"`
	CreatedBy       string             `bson:"createdBy"`
	IsDeleted       bool               `bson:"isDeleted"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
	DeletedAt       *time.Time         `bson:"deletedAt,omitempty"`
}

func newPaymentDocument(p *domain.Payment) *paymentDocument {
	return &paymentDocument{
		Amount:          p.Amount,
		Currency:        p.Currency,
		PaymentMethod:   p.PaymentMethod,
		ReferenceNumber: p.ReferenceNumber,
		Description:     p.Description,
		PlanType:        p.PlanType,
		Status:          string(p.Status),
		UsedAt:          p.UsedAt,
		UsedBy:          p.UsedBy,
		CreatedBy:       p.CreatedBy,
		IsDeleted:       p.IsDeleted,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		DeletedAt:       p.DeletedAt,
	}
}

func (d *paymentDocument) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:              d.ID.Hex(),
		Amount:          d.Amount,
		Currency:        d.Currency,
		PaymentMethod:   d.PaymentMethod,
		ReferenceNumber: d.ReferenceNumber,
		Description:     d.Description,
		PlanType:        d.PlanType,
		Status:          domain.PaymentStatus(d.Status),
		UsedAt:          d.UsedAt,
		UsedBy:          d.UsedBy,
		CreatedBy:       d.CreatedBy,
		IsDeleted:       d.IsDeleted,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		DeletedAt:       d.DeletedAt,
	}
}

type paymentRepository struct {
	coll *mongo.Collection
}

// NewPaymentRepository returns a domain.PaymentRepository backed by the
// payments collection of db.
func NewPaymentRepository(db *mongo.Database) domain.PaymentRepository {
	return &paymentRepository{coll: db.Collection(PaymentsCollection)}
}

func livePayment(id string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "isDeleted": false}, true
}

// updateFilter matches the live payment id, and only while its status still
// equals expected when one is given.
func updateFilter(id string, expected *domain.PaymentStatus) (bson.M, bool) {
	q, ok := livePayment(id)
	if !ok {
		return nil, false
	}
	if expected != nil {
		q["status"] = string(*expected)
	}
	return q, true
}

func paymentSet(p domain.PaymentPatch) bson.M {
	set := bson.M{"updatedAt": p.UpdatedAt}
	if p.Amount != nil {
		set["amount"] = *p.Amount
	}
	if p.Currency != nil {
		set["currency"] = *p.Currency
	}
	if p.PaymentMethod != nil {
		set["paymentMethod"] = *p.PaymentMethod
	}
	if p.ReferenceNumber != nil {
		set["referenceNumber"] = *p.ReferenceNumber
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.PlanType != nil {
		set["planType"] = *p.PlanType
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.UsedAt != nil {
		set["usedAt"] = *p.UsedAt
	}
	if p.UsedBy != nil {
		set["usedBy"] = *p.UsedBy
	}
	return set
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	doc := newPaymentDocument(p)
	doc.ID = primitive.NewObjectID()
	_, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateReference
	}
	if err != nil {
		return err
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (r *paymentRepository) findOne(ctx context.Context, q bson.M) (*domain.Payment, error) {
	var doc paymentDocument
	err := r.coll.FindOne(ctx, q).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	q, ok := livePayment(id)
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return r.findOne(ctx, q)
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	return r.findOne(ctx, bson.M{"referenceNumber": reference, "isDeleted": false})
}

func (r *paymentRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Payment, int, error) {
	q := bson.M{"isDeleted": false}
	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64(params.Offset())).
		SetLimit(int64(params.PageSize))
	out, err := r.find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (r *paymentRepository) ListUsedBy(ctx context.Context, userID string) ([]*domain.Payment, error) {
	q := bson.M{"usedBy": userID, "status": string(domain.PaymentUsed), "isDeleted": false}
	return r.find(ctx, q, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *paymentRepository) find(ctx context.Context, q bson.M, opts *options.FindOptions) ([]*domain.Payment, error) {
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	var docs []paymentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Payment, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *paymentRepository) Update(ctx context.Context, id string, expectedStatus *domain.PaymentStatus, patch domain.PaymentPatch) (*domain.Payment, error) {
	q, ok := updateFilter(id, expectedStatus)
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc paymentDocument
	err := r.coll.FindOneAndUpdate(ctx, q, bson.M{"$set": paymentSet(patch)}, opts).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.ErrPaymentNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrDuplicateReference
	case err != nil:
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *paymentRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	q, ok := livePayment(id)
	if !ok {
		return domain.ErrPaymentNotFound
	}
	update := bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": at, "updatedAt": at}}
	res, err := r.coll.UpdateOne(ctx, q, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
