package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inviteplanner/internal/domain"
	"inviteplanner/internal/paging"
)

type invitationDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Title     string             `bson:"title"`
	EventType string             `bson:"eventType"`
	EventDate time.Time          `bson:"eventDate"`
	Venue     string             `bson:"venue"`
	Hosts     []string           `bson:"hosts"`
	Message   string             `bson:"message"`
	IsDeleted bool               `bson:"isDeleted"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
	DeletedAt *time.Time         `bson:"deletedAt,omitempty"`
}

func newInvitationDocument(inv *domain.Invitation) *invitationDocument {
	hosts := inv.Hosts
	if hosts == nil {
		hosts = []string{}
	}
	return &invitationDocument{
		UserID:    inv.UserID,
		Title:     inv.Title,
		EventType: inv.EventType,
		EventDate: inv.EventDate,
		Venue:     inv.Venue,
		Hosts:     hosts,
		Message:   inv.Message,
		IsDeleted: inv.IsDeleted,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
		DeletedAt: inv.DeletedAt,
	}
}

func (d *invitationDocument) toDomain() *domain.Invitation {
	hosts := d.Hosts
	if hosts == nil {
		hosts = []string{}
	}
	return &domain.Invitation{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Title:     d.Title,
		EventType: d.EventType,
		EventDate: d.EventDate,
		Venue:     d.Venue,
		Hosts:     hosts,
		Message:   d.Message,
		IsDeleted: d.IsDeleted,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		DeletedAt: d.DeletedAt,
	}
}

type invitationRepository struct {
	coll *mongo.Collection
}

// NewInvitationRepository returns a domain.InvitationRepository backed by the
// invitations collection of db.
func NewInvitationRepository(db *mongo.Database) domain.InvitationRepository {
	return &invitationRepository{coll: db.Collection(InvitationsCollection)}
}

// pageFilter translates a paging filter into a query. Bounds that are not
// valid ObjectIDs are rejected rather than silently dropped.
func pageFilter(f paging.Filter) (bson.M, error) {
	q := bson.M{"userId": f.OwnerID, "isDeleted": false}
	idRange := bson.M{}
	if f.AfterID != "" {
		oid, err := primitive.ObjectIDFromHex(f.AfterID)
		if err != nil {
			return nil, fmt.Errorf("after id %q: %w", f.AfterID, err)
		}
		idRange["$gt"] = oid
	}
	if f.BeforeID != "" {
		oid, err := primitive.ObjectIDFromHex(f.BeforeID)
		if err != nil {
			return nil, fmt.Errorf("before id %q: %w", f.BeforeID, err)
		}
		idRange["$lt"] = oid
	}
	if len(idRange) > 0 {
		q["_id"] = idRange
	}
	return q, nil
}

func idSort(order paging.SortOrder) bson.D {
	return bson.D{{Key: "_id", Value: int(order)}}
}

// ownedFilter matches one live invitation of userID. ok is false when id can
// never match a stored document.
func ownedFilter(userID, id string) (q bson.M, ok bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "userId": userID, "isDeleted": false}, true
}

func (r *invitationRepository) FindMany(ctx context.Context, f paging.Filter, order paging.SortOrder, limit int) ([]*domain.Invitation, error) {
	q, err := pageFilter(f)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(idSort(order)).SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	var docs []invitationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Invitation, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *invitationRepository) FindOne(ctx context.Context, f paging.Filter, order paging.SortOrder) (*domain.Invitation, bool, error) {
	q, err := pageFilter(f)
	if err != nil {
		return nil, false, err
	}
	var doc invitationDocument
	err = r.coll.FindOne(ctx, q, options.FindOne().SetSort(idSort(order))).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.toDomain(), true, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	doc := newInvitationDocument(inv)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	inv.ID = doc.ID.Hex()
	inv.Hosts = doc.Hosts
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, userID, id string) (*domain.Invitation, error) {
	q, ok := ownedFilter(userID, id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	var doc invitationDocument
	err := r.coll.FindOne(ctx, q).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func invitationSet(p domain.InvitationPatch) bson.M {
	set := bson.M{"updatedAt": p.UpdatedAt}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.EventType != nil {
		set["eventType"] = *p.EventType
	}
	if p.EventDate != nil {
		set["eventDate"] = *p.EventDate
	}
	if p.Venue != nil {
		set["venue"] = *p.Venue
	}
	if p.Hosts != nil {
		hosts := *p.Hosts
		if hosts == nil {
			hosts = []string{}
		}
		set["hosts"] = hosts
	}
	if p.Message != nil {
		set["message"] = *p.Message
	}
	return set
}

func (r *invitationRepository) Update(ctx context.Context, userID, id string, patch domain.InvitationPatch) (*domain.Invitation, error) {
	q, ok := ownedFilter(userID, id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc invitationDocument
	err := r.coll.FindOneAndUpdate(ctx, q, bson.M{"$set": invitationSet(patch)}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *invitationRepository) SoftDelete(ctx context.Context, userID, id string, at time.Time) error {
	q, ok := ownedFilter(userID, id)
	if !ok {
		return domain.ErrNotFound
	}
	update := bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": at, "updatedAt": at}}
	res, err := r.coll.UpdateOne(ctx, q, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"userId": userID, "isDeleted": false})
}
