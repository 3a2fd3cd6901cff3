package repository

import (
	"context"
	"log"
	"strings"

	"Backend-Feedback/src/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	FormsCollection          = "forms"
	QuestionsCollection      = "questions"
	FeedbacksCollection      = "feedbacks"
	UsersCollection          = "users"
	AcademicYearsCollection  = "academicyears"
	ImageFeedbacksCollection = "imagefeedbacks"
)

// NewMongoStore wires every repository to db. supportsTx comes from
// database.SupportsTransactions.
func NewMongoStore(db *mongo.Database, supportsTx bool) *Store {
	return &Store{
		Forms:          &mongoForms{col: db.Collection(FormsCollection)},
		Questions:      &mongoQuestions{col: db.Collection(QuestionsCollection)},
		Feedbacks:      &mongoFeedbacks{col: db.Collection(FeedbacksCollection)},
		Users:          &mongoUsers{col: db.Collection(UsersCollection)},
		AcademicYears:  &mongoAcademicYears{col: db.Collection(AcademicYearsCollection)},
		ImageFeedbacks: &mongoImageFeedbacks{col: db.Collection(ImageFeedbacksCollection)},
		Tx:             &mongoTx{client: db.Client(), enabled: supportsTx},
	}
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// (formId, userId) index is what makes InsertIfAbsent atomic.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		FeedbacksCollection: {
			{
				Keys:    bson.D{{Key: "formId", Value: 1}, {Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_form_user"),
			},
			{Keys: bson.D{{Key: "formId", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}},
		},
		QuestionsCollection: {
			{Keys: bson.D{{Key: "formId", Value: 1}}},
		},
		FormsCollection: {
			{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{
				{Key: "isPublished", Value: 1},
				{Key: "academicYear", Value: 1},
				{Key: "department", Value: 1},
				{Key: "createdAt", Value: -1},
			}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "collegeId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		AcademicYearsCollection: {
			{Keys: bson.D{{Key: "year", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ImageFeedbacksCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, idx := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return errors.Wrapf(err, "create indexes on %s", name)
		}
	}
	log.Println("✅ MongoDB indexes ensured")
	return nil
}

type mongoTx struct {
	client  *mongo.Client
	enabled bool
}

func (t *mongoTx) SupportsTransactions() bool { return t.enabled }

func (t *mongoTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}
	session, err := t.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer session.EndSession(context.Background())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func findOptions(page models.PaginationParams, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if page.Limit > 0 {
		opts.SetSkip(page.GetSkip()).SetLimit(int64(page.Limit))
	}
	return opts
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return errors.Wrap(err, op)
	}
}

// --- forms ---

type mongoForms struct{ col *mongo.Collection }

func (r *mongoForms) Insert(ctx context.Context, form *models.Form) error {
	if form.ID.IsZero() {
		form.ID = primitive.NewObjectID()
	}
	if form.QuestionIDs == nil {
		form.QuestionIDs = []primitive.ObjectID{}
	}
	_, err := r.col.InsertOne(ctx, form)
	return translate(err, "insert form")
}

func (r *mongoForms) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	var form models.Form
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&form); err != nil {
		return nil, translate(err, "find form")
	}
	return &form, nil
}

func formFilter(f FormFilter) bson.M {
	filter := bson.M{}
	if f.CreatedBy != nil {
		filter["createdBy"] = *f.CreatedBy
	}
	if f.Published != nil {
		filter["isPublished"] = *f.Published
	}
	if f.AcademicYear != nil {
		filter["academicYear"] = *f.AcademicYear
	}
	if len(f.Departments) > 0 {
		filter["department"] = bson.M{"$in": f.Departments}
	}
	return filter
}

func (r *mongoForms) List(ctx context.Context, f FormFilter, page models.PaginationParams) ([]models.Form, int64, error) {
	filter := formFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, "count forms")
	}
	cursor, err := r.col.Find(ctx, filter, findOptions(page, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, 0, translate(err, "find forms")
	}
	defer cursor.Close(ctx)

	forms := []models.Form{}
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, 0, translate(err, "decode forms")
	}
	return forms, total, nil
}

func (r *mongoForms) Update(ctx context.Context, id primitive.ObjectID, upd FormUpdate) (*models.Form, error) {
	set := bson.M{"updatedAt": now()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.IsPublished != nil {
		set["isPublished"] = *upd.IsPublished
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var form models.Form
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&form); err != nil {
		return nil, translate(err, "update form")
	}
	return &form, nil
}

func (r *mongoForms) SetQuestions(ctx context.Context, id primitive.ObjectID, questionIDs []primitive.ObjectID) error {
	if questionIDs == nil {
		questionIDs = []primitive.ObjectID{}
	}
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"questions": questionIDs, "updatedAt": now()}})
	if err != nil {
		return translate(err, "set form questions")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoForms) PushQuestion(ctx context.Context, id, questionID primitive.ObjectID, position int) error {
	each := bson.M{"$each": []primitive.ObjectID{questionID}}
	if position >= 0 {
		each["$position"] = position
	}
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"questions": each},
		"$set":  bson.M{"updatedAt": now()},
	})
	if err != nil {
		return translate(err, "push form question")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoForms) PullQuestion(ctx context.Context, id, questionID primitive.ObjectID) (int, error) {
	form, err := r.FindByID(ctx, id)
	if err != nil {
		return -1, err
	}
	pos := -1
	for i, qid := range form.QuestionIDs {
		if qid == questionID {
			pos = i
			break
		}
	}
	_, err = r.col.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"questions": questionID},
		"$set":  bson.M{"updatedAt": now()},
	})
	if err != nil {
		return -1, translate(err, "pull form question")
	}
	return pos, nil
}

func (r *mongoForms) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "delete form")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoForms) CountByAcademicYear(ctx context.Context, academicYear primitive.ObjectID) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"academicYear": academicYear})
	return n, translate(err, "count forms by academic year")
}

// --- questions ---

type mongoQuestions struct{ col *mongo.Collection }

func (r *mongoQuestions) InsertMany(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(questions))
	for i := range questions {
		if questions[i].ID.IsZero() {
			questions[i].ID = primitive.NewObjectID()
		}
		if questions[i].Options == nil {
			questions[i].Options = []string{}
		}
		docs = append(docs, questions[i])
	}
	_, err := r.col.InsertMany(ctx, docs)
	return translate(err, "insert questions")
}

func (r *mongoQuestions) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	var q models.Question
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		return nil, translate(err, "find question")
	}
	return &q, nil
}

func (r *mongoQuestions) FindByForm(ctx context.Context, formID primitive.ObjectID) ([]models.Question, error) {
	cursor, err := r.col.Find(ctx, bson.M{"formId": formID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate(err, "find questions")
	}
	defer cursor.Close(ctx)

	questions := []models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, translate(err, "decode questions")
	}
	return questions, nil
}

func (r *mongoQuestions) Update(ctx context.Context, id primitive.ObjectID, text *string, opts *[]string) (*models.Question, error) {
	set := bson.M{"updatedAt": now()}
	if text != nil {
		set["question"] = *text
	}
	if opts != nil {
		list := *opts
		if list == nil {
			list = []string{}
		}
		set["options"] = list
	}
	var q models.Question
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&q)
	if err != nil {
		return nil, translate(err, "update question")
	}
	return &q, nil
}

func (r *mongoQuestions) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "delete question")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoQuestions) DeleteByForm(ctx context.Context, formID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"formId": formID})
	if err != nil {
		return 0, translate(err, "delete questions by form")
	}
	return res.DeletedCount, nil
}

// --- feedbacks ---

type mongoFeedbacks struct{ col *mongo.Collection }

func (r *mongoFeedbacks) InsertIfAbsent(ctx context.Context, fb *models.Feedback) error {
	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, fb)
	return translate(err, "insert feedback")
}

func (r *mongoFeedbacks) Exists(ctx context.Context, formID, userID primitive.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"formId": formID, "userId": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "count feedback")
	}
	return n > 0, nil
}

func (r *mongoFeedbacks) SubmittedFormIDs(ctx context.Context, userID primitive.ObjectID, formIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	out := map[primitive.ObjectID]bool{}
	if len(formIDs) == 0 {
		return out, nil
	}
	ids, err := r.col.Distinct(ctx, "formId", bson.M{"userId": userID, "formId": bson.M{"$in": formIDs}})
	if err != nil {
		return nil, translate(err, "distinct submitted forms")
	}
	for _, raw := range ids {
		if id, ok := raw.(primitive.ObjectID); ok {
			out[id] = true
		}
	}
	return out, nil
}

var replayOrder = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

func (r *mongoFeedbacks) FindByForm(ctx context.Context, formID primitive.ObjectID) ([]models.Feedback, error) {
	cursor, err := r.col.Find(ctx, bson.M{"formId": formID}, options.Find().SetSort(replayOrder))
	if err != nil {
		return nil, translate(err, "find feedbacks")
	}
	defer cursor.Close(ctx)

	feedbacks := []models.Feedback{}
	if err := cursor.All(ctx, &feedbacks); err != nil {
		return nil, translate(err, "decode feedbacks")
	}
	return feedbacks, nil
}

func (r *mongoFeedbacks) ListByForm(ctx context.Context, formID primitive.ObjectID, page models.PaginationParams) ([]models.Feedback, int64, error) {
	filter := bson.M{"formId": formID}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, "count feedbacks")
	}
	cursor, err := r.col.Find(ctx, filter, findOptions(page, replayOrder))
	if err != nil {
		return nil, 0, translate(err, "find feedbacks")
	}
	defer cursor.Close(ctx)

	feedbacks := []models.Feedback{}
	if err := cursor.All(ctx, &feedbacks); err != nil {
		return nil, 0, translate(err, "decode feedbacks")
	}
	return feedbacks, total, nil
}

func (r *mongoFeedbacks) CountReferencingQuestion(ctx context.Context, formID, questionID primitive.ObjectID) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"formId": formID, "responses.questionId": questionID})
	return n, translate(err, "count feedbacks by question")
}

func (r *mongoFeedbacks) DeleteByForm(ctx context.Context, formID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"formId": formID})
	if err != nil {
		return 0, translate(err, "delete feedbacks by form")
	}
	return res.DeletedCount, nil
}

// --- users ---

type mongoUsers struct{ col *mongo.Collection }

func (r *mongoUsers) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = strings.ToLower(user.Email)
	_, err := r.col.InsertOne(ctx, user)
	return translate(err, "insert user")
}

func (r *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err, "find user")
	}
	return &u, nil
}

func (r *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u); err != nil {
		return nil, translate(err, "find user by email")
	}
	return &u, nil
}

func (r *mongoUsers) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": now()}}
	if token == "" {
		update = bson.M{"$unset": bson.M{"refreshToken": ""}, "$set": bson.M{"updatedAt": now()}}
	}
	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return translate(err, "set refresh token")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUsers) CountByAcademicYear(ctx context.Context, academicYear primitive.ObjectID) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"academicYear": academicYear})
	return n, translate(err, "count users by academic year")
}

// --- academic years ---

type mongoAcademicYears struct{ col *mongo.Collection }

func (r *mongoAcademicYears) Insert(ctx context.Context, year *models.AcademicYear) error {
	if year.ID.IsZero() {
		year.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, year)
	return translate(err, "insert academic year")
}

func (r *mongoAcademicYears) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AcademicYear, error) {
	var y models.AcademicYear
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&y); err != nil {
		return nil, translate(err, "find academic year")
	}
	return &y, nil
}

func (r *mongoAcademicYears) List(ctx context.Context) ([]models.AcademicYear, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "year", Value: -1}}))
	if err != nil {
		return nil, translate(err, "find academic years")
	}
	defer cursor.Close(ctx)

	years := []models.AcademicYear{}
	if err := cursor.All(ctx, &years); err != nil {
		return nil, translate(err, "decode academic years")
	}
	return years, nil
}

func (r *mongoAcademicYears) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "delete academic year")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- image feedbacks ---

type mongoImageFeedbacks struct{ col *mongo.Collection }

func (r *mongoImageFeedbacks) Insert(ctx context.Context, fb *models.ImageFeedback) error {
	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, fb)
	return translate(err, "insert image feedback")
}

func (r *mongoImageFeedbacks) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ImageFeedback, error) {
	var fb models.ImageFeedback
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&fb); err != nil {
		return nil, translate(err, "find image feedback")
	}
	return &fb, nil
}

func (r *mongoImageFeedbacks) Replace(ctx context.Context, fb *models.ImageFeedback) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": fb.ID}, fb)
	if err != nil {
		return translate(err, "replace image feedback")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoImageFeedbacks) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "delete image feedback")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoImageFeedbacks) find(ctx context.Context, filter bson.M, page models.PaginationParams) ([]models.ImageFeedback, int64, error) {
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, "count image feedbacks")
	}
	cursor, err := r.col.Find(ctx, filter, findOptions(page, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, 0, translate(err, "find image feedbacks")
	}
	defer cursor.Close(ctx)

	items := []models.ImageFeedback{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, translate(err, "decode image feedbacks")
	}
	return items, total, nil
}

func (r *mongoImageFeedbacks) ListByUser(ctx context.Context, userID primitive.ObjectID, page models.PaginationParams) ([]models.ImageFeedback, int64, error) {
	return r.find(ctx, bson.M{"userId": userID}, page)
}

func (r *mongoImageFeedbacks) List(ctx context.Context, status models.ModerationStatus, page models.PaginationParams) ([]models.ImageFeedback, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter, page)
}
