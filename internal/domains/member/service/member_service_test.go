package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activityModel "library-backend/internal/domains/activity/model"
	"library-backend/internal/domains/member/model"
)

type fakeRepo struct {
	members    map[uuid.UUID]*model.Member
	activeLoan map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{members: map[uuid.UUID]*model.Member{}, activeLoan: map[uuid.UUID]bool{}}
}

func (f *fakeRepo) Create(ctx context.Context, m *model.Member) error {
	m.ID = uuid.New()
	m.JoinDate = time.Now()
	cp := *m
	f.members[m.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, model.NewMemberNotFoundError(id)
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepo) List(ctx context.Context, filter model.ListMembersFilter) ([]model.Member, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Update(ctx context.Context, m *model.Member) error {
	cp := *m
	f.members[m.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.members[id]; !ok {
		return model.NewMemberNotFoundError(id)
	}
	if f.activeLoan[id] {
		return model.ErrMemberHasActiveLoans
	}
	delete(f.members, id)
	return nil
}

func (f *fakeRepo) Count(ctx context.Context) (int, error) { return len(f.members), nil }

func (f *fakeRepo) ExistsByEmails(ctx context.Context, emails []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]model.Member, error) { return nil, nil }

type fakeRecorder struct{ entries []activityModel.Entry }

func (f *fakeRecorder) Record(ctx context.Context, e activityModel.Entry) {
	f.entries = append(f.entries, e)
}

func TestCreate_RecordsActivity(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewMemberService(newFakeRepo(), rec, nil)

	m, err := svc.Create(context.Background(), model.CreateMemberRequest{Name: " Ada Lovelace ", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", m.Name)
	assert.False(t, m.JoinDate.IsZero())

	require.Len(t, rec.entries, 1)
	assert.Equal(t, activityModel.TypeAddMember, rec.entries[0].Type)
	assert.Equal(t, "Added member: Ada Lovelace", rec.entries[0].Message)
}

func TestCreate_NameRequired(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewMemberService(newFakeRepo(), rec, nil)

	_, err := svc.Create(context.Background(), model.CreateMemberRequest{Email: "ada@example.com"})
	assert.Error(t, err)
	assert.Empty(t, rec.entries)
}

func TestUpdate_KeepsJoinDate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewMemberService(repo, &fakeRecorder{}, nil)

	joined := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	id := uuid.New()
	repo.members[id] = &model.Member{ID: id, Name: "Ada", JoinDate: joined}

	phone := "555-0100"
	m, err := svc.Update(context.Background(), id, model.UpdateMemberRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", m.Phone)
	assert.Equal(t, joined, repo.members[id].JoinDate)
}

func TestDelete(t *testing.T) {
	repo := newFakeRepo()
	id := uuid.New()
	repo.members[id] = &model.Member{ID: id, Name: "Ada"}

	svc := NewMemberService(repo, &fakeRecorder{}, nil)

	repo.activeLoan[id] = true
	err := svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrMemberHasActiveLoans)
	assert.Contains(t, repo.members, id)

	repo.activeLoan[id] = false
	err = svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.NotContains(t, repo.members, id)

	err = svc.Delete(context.Background(), id)
	assert.True(t, model.IsNotFoundError(err))
}
