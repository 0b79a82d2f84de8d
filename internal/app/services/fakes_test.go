package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/yigit/dancestudio/internal/app/models"
	"github.com/yigit/dancestudio/internal/app/repositories"
	"github.com/yigit/dancestudio/internal/db"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
)

type invocation struct {
	procedure string
	args      map[string]any
}

// fakeInvoker answers every call with raw JSON or err and records the calls
type fakeInvoker struct {
	raw    string
	err    error
	calls  []invocation
	events *[]string
}

func (f *fakeInvoker) Invoke(_ context.Context, procedure string, args db.Args, out any) error {
	named := make(map[string]any, len(args))
	for _, a := range args {
		named[a.Name] = a.Value
	}
	f.calls = append(f.calls, invocation{procedure: procedure, args: named})
	if f.events != nil {
		*f.events = append(*f.events, "invoke:"+procedure)
	}
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.raw), out)
}

type fakeInvalidator struct {
	calls  [][]string
	events *[]string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, paths ...string) {
	f.calls = append(f.calls, paths)
	if f.events != nil {
		for _, p := range paths {
			*f.events = append(*f.events, "invalidate:"+p)
		}
	}
}

type mockRoles struct {
	mock.Mock
}

func (m *mockRoles) GetRole(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Role), args.Error(1)
}

type mockBookings struct {
	mock.Mock
}

func (m *mockBookings) HasConfirmed(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

type fakeCourseFinder struct {
	course *models.Course
	err    error
	asked  time.Time
}

func (f *fakeCourseFinder) GetScheduledOn(_ context.Context, day time.Time) (*models.Course, error) {
	f.asked = day
	return f.course, f.err
}

type fakeCourseReader struct {
	courses     []models.Course
	byID        map[uuid.UUID]*models.Course
	instructors []models.InstructorSummary
	err         error
	listCalls   int
	lastFilter  repositories.CourseFilter
}

func (f *fakeCourseReader) List(_ context.Context, filter repositories.CourseFilter) ([]models.Course, error) {
	f.listCalls++
	f.lastFilter = filter
	return f.courses, f.err
}

func (f *fakeCourseReader) GetByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	course, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return course, nil
}

func (f *fakeCourseReader) ListInstructors(context.Context) ([]models.InstructorSummary, error) {
	return f.instructors, f.err
}

// pathRecorder is a viewcache.Notifier that remembers invalidated paths
type pathRecorder struct {
	paths []string
}

func (r *pathRecorder) NotifyInvalidated(path string) {
	r.paths = append(r.paths, path)
}

type fakeProfiles struct {
	profiles  []models.Profile
	total     int64
	err       error
	gotSearch string
	gotLimit  int
	gotOffset int
	byID      map[uuid.UUID]*models.Profile
}

func (f *fakeProfiles) List(_ context.Context, search string, limit, offset int) ([]models.Profile, int64, error) {
	f.gotSearch, f.gotLimit, f.gotOffset = search, limit, offset
	return f.profiles, f.total, f.err
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return p, nil
}

type fakeVerifications struct {
	pending []models.VerificationRequest
	err     error
}

func (f *fakeVerifications) ListPending(context.Context) ([]models.VerificationRequest, error) {
	return f.pending, f.err
}

type fakeCheckins struct {
	checkins []models.Checkin
	err      error
}

func (f *fakeCheckins) ListByCourse(context.Context, uuid.UUID) ([]models.Checkin, error) {
	return f.checkins, f.err
}

type fakeSubscriptions struct {
	subs []models.Subscription
	err  error
}

func (f *fakeSubscriptions) ListActiveByUser(context.Context, uuid.UUID) ([]models.Subscription, error) {
	return f.subs, f.err
}

type fakeUpcoming struct {
	bookings []models.Booking
	err      error
	from     time.Time
}

func (f *fakeUpcoming) ListUpcomingByUser(_ context.Context, _ uuid.UUID, from time.Time) ([]models.Booking, error) {
	f.from = from
	return f.bookings, f.err
}
