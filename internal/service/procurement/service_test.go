package procurement

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/procura/internal/config"
	"github.com/Additional-Code/procura/internal/entity"
	"github.com/Additional-Code/procura/internal/policy"
	"github.com/Additional-Code/procura/pkg/errorbank"
)

var (
	slipi = policy.Actor{UserID: 2, Name: "Slipi", Role: entity.RoleVenueUser, VenueName: "Slipi"}
	lippo = policy.Actor{UserID: 4, Name: "Lippo", Role: entity.RoleVenueUser, VenueName: "Lippo"}
	admin = policy.Actor{UserID: 11, Name: "Super Admin", Role: entity.RoleSuperAdmin}
)

type fixture struct {
	svc       *Service
	store     *memoryStore
	publisher *recordingPublisher
	cache     *mapCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemoryStore(
		entity.User{ID: slipi.UserID, Name: slipi.Name, Role: slipi.Role, VenueName: slipi.VenueName},
		entity.User{ID: lippo.UserID, Name: lippo.Name, Role: lippo.Role, VenueName: lippo.VenueName},
		entity.User{ID: admin.UserID, Name: admin.Name, Role: admin.Role},
	)
	publisher := &recordingPublisher{}
	c := newMapCache()

	var cfg config.Config
	cfg.Messaging.Enabled = true
	cfg.Procurement.PageSize = 10
	cfg.Cache.DefaultTTL = time.Minute

	svc := NewService(Params{Store: store, Cache: c, Config: cfg, Publisher: publisher})
	clock := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return &fixture{svc: svc, store: store, publisher: publisher, cache: c}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func validInput() CreateInput {
	return CreateInput{
		RequestDate:      "2024-01-15",
		VenueName:        "Slipi",
		ItemName:         "Kabel HDMI",
		Quantity:         intPtr(5),
		UsageDescription: "Ruang rapat lantai 2",
		RecipientContact: "Budi",
	}
}

func requireKind(t *testing.T, err error, kind errorbank.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errorbank.Is(err, kind), "expected %s, got %v", kind, err)
}

func TestCreate_ForcesPendingAndOwner(t *testing.T) {
	f := newFixture(t)

	in := validInput()
	in.Status = string(entity.StatusShipped)
	req, err := f.svc.Create(context.Background(), slipi, in)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, req.Status)
	assert.Equal(t, slipi.UserID, req.RequesterID)
	assert.Equal(t, "Slipi", req.RequesterName())
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), req.RequestDate)
	assert.False(t, req.CreatedAt.IsZero())
	assert.Equal(t, req.CreatedAt, req.UpdatedAt)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"quantity absent", func(in *CreateInput) { in.Quantity = nil }, "quantity"},
		{"quantity zero", func(in *CreateInput) { in.Quantity = intPtr(0) }, "quantity"},
		{"quantity negative", func(in *CreateInput) { in.Quantity = intPtr(-2) }, "quantity"},
		{"missing item", func(in *CreateInput) { in.ItemName = "   " }, "item_name"},
		{"missing usage", func(in *CreateInput) { in.UsageDescription = "" }, "usage_description"},
		{"missing pic", func(in *CreateInput) { in.RecipientContact = "" }, "recipient_contact"},
		{"missing date", func(in *CreateInput) { in.RequestDate = "" }, "request_date"},
		{"malformed date", func(in *CreateInput) { in.RequestDate = "15/01/2024" }, "request_date"},
		{"malformed link", func(in *CreateInput) { in.ItemLink = "not a url" }, "item_link"},
		{"unknown status", func(in *CreateInput) { in.Status = "Pending" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validInput()
			tt.mutate(&in)

			_, err := f.svc.Create(context.Background(), slipi, in)
			requireKind(t, err, errorbank.KindUnprocessableEntity)
			assert.Contains(t, errorbank.From(err).Fields(), tt.field)
			assert.Empty(t, f.store.rows)
		})
	}
}

func TestCreate_QuantityOneSucceeds(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Quantity = intPtr(1)
	in.ItemLink = "https://tokopedia.com/kabel-hdmi"

	req, err := f.svc.Create(context.Background(), slipi, in)
	require.NoError(t, err)
	assert.Equal(t, 1, req.Quantity)
	assert.Equal(t, "https://tokopedia.com/kabel-hdmi", req.ItemLink)
}

func TestCreate_Venue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validInput()
	in.VenueName = "Lippo"
	req, err := f.svc.Create(ctx, slipi, in)
	require.NoError(t, err)
	assert.Equal(t, "Slipi", req.VenueName)

	in.VenueName = "Gudang Pusat"
	_, err = f.svc.Create(ctx, admin, in)
	requireKind(t, err, errorbank.KindUnprocessableEntity)
	assert.Contains(t, errorbank.From(err).Fields(), "venue_name")

	in.VenueName = "Paramita"
	req, err = f.svc.Create(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "Paramita", req.VenueName)
	assert.Equal(t, admin.UserID, req.RequesterID)
}

func TestList_VenueUserOnlySeesOwnRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, slipi, validInput())
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, lippo, validInput())
		require.NoError(t, err)
	}

	res, err := f.svc.List(ctx, slipi, ListFilter{VenueName: "Lippo"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	res, err = f.svc.List(ctx, slipi, ListFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	for _, item := range res.Items {
		assert.Equal(t, slipi.UserID, item.RequesterID)
	}

	res, err = f.svc.List(ctx, admin, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Total)

	res, err = f.svc.List(ctx, admin, ListFilter{VenueName: "Lippo"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 12; i++ {
		req, err := f.svc.Create(ctx, slipi, validInput())
		require.NoError(t, err)
		ids = append(ids, req.ID)
	}

	first, err := f.svc.List(ctx, slipi, ListFilter{Page: 1})
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 12, first.Total)
	assert.Equal(t, 2, first.LastPage)
	assert.Equal(t, 10, first.PerPage)
	assert.Equal(t, ids[11], first.Items[0].ID)

	second, err := f.svc.List(ctx, slipi, ListFilter{Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, ids[0], second.Items[1].ID)
}

func TestList_StatusFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, slipi, validInput())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, slipi, validInput())
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, admin, a.ID, string(entity.StatusRejected))
	require.NoError(t, err)

	res, err := f.svc.List(ctx, admin, ListFilter{Status: string(entity.StatusRejected)})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, a.ID, res.Items[0].ID)

	_, err = f.svc.List(ctx, admin, ListFilter{Status: "Rejected"})
	requireKind(t, err, errorbank.KindUnprocessableEntity)
	_, err = f.svc.List(ctx, admin, ListFilter{VenueName: "Nowhere"})
	requireKind(t, err, errorbank.KindUnprocessableEntity)
}

func TestStatusScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validInput()
	req, err := f.svc.Create(ctx, slipi, in)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, req.Status)

	// Warm the cache so the status change must invalidate it.
	_, err = f.svc.Get(ctx, slipi, req.ID)
	require.NoError(t, err)

	updated, err := f.svc.ChangeStatus(ctx, admin, req.ID, "Disetujui")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, updated.Status)

	seen, err := f.svc.Get(ctx, slipi, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, seen.Status)
	assert.Equal(t, "Slipi", seen.RequesterName())

	_, err = f.svc.Get(ctx, lippo, req.ID)
	requireKind(t, err, errorbank.KindForbidden)
}

func TestGet_NotFoundVersusForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, admin, 404)
	requireKind(t, err, errorbank.KindNotFound)
	_, err = f.svc.Get(ctx, lippo, 404)
	requireKind(t, err, errorbank.KindNotFound)
}

func TestForeignRecordIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, slipi, validInput())
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, lippo, req.ID)
	requireKind(t, err, errorbank.KindForbidden)
	_, err = f.svc.Update(ctx, lippo, req.ID, UpdateInput{ItemName: strPtr("Proyektor")})
	requireKind(t, err, errorbank.KindForbidden)
	_, err = f.svc.ChangeStatus(ctx, lippo, req.ID, string(entity.StatusShipped))
	requireKind(t, err, errorbank.KindForbidden)
	err = f.svc.Delete(ctx, lippo, req.ID)
	requireKind(t, err, errorbank.KindForbidden)

	stored, err := f.svc.Get(ctx, slipi, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kabel HDMI", stored.ItemName)
	assert.Equal(t, entity.StatusPending, stored.Status)
}

func TestSuperAdminCanDoEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, lippo, validInput())
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, admin, req.ID)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, admin, req.ID, UpdateInput{VenueName: strPtr("Seskoad")})
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, admin, req.ID, string(entity.StatusShipped))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, admin, req.ID))
}

func TestChangeStatus_InvalidLeavesRecordUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, slipi, validInput())
	require.NoError(t, err)
	before := f.store.rows[req.ID]

	_, err = f.svc.ChangeStatus(ctx, admin, req.ID, "Approved")
	requireKind(t, err, errorbank.KindUnprocessableEntity)
	assert.Equal(t, before, f.store.rows[req.ID])

	_, err = f.svc.ChangeStatus(ctx, admin, 999, string(entity.StatusApproved))
	requireKind(t, err, errorbank.KindNotFound)
}

func TestChangeStatus_AnyToAny(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, slipi, validInput())
	require.NoError(t, err)

	for _, next := range []entity.Status{entity.StatusShipped, entity.StatusPending, entity.StatusRejected, entity.StatusApproved, entity.StatusPending} {
		got, err := f.svc.ChangeStatus(ctx, slipi, req.ID, string(next))
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}
}

func TestUpdate_RoundTripOnlyAdvancesUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validInput()
	in.Note = "urgent"
	created, err := f.svc.Create(ctx, slipi, in)
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, slipi, created.ID, UpdateInput{
		RequestDate:      strPtr(in.RequestDate),
		ItemName:         strPtr(in.ItemName),
		Quantity:         intPtr(*in.Quantity),
		UsageDescription: strPtr(in.UsageDescription),
		RecipientContact: strPtr(in.RecipientContact),
		Note:             strPtr(in.Note),
	})
	require.NoError(t, err)

	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	expected := *created
	expected.UpdatedAt = updated.UpdatedAt
	assert.Equal(t, expected, *updated)
}

func TestUpdate_Partial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, slipi, validInput())
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, slipi, created.ID, UpdateInput{
		Quantity:  intPtr(8),
		VenueName: strPtr("Lippo"),
		Status:    strPtr(string(entity.StatusShipped)),
	})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Quantity)
	assert.Equal(t, "Slipi", updated.VenueName)
	assert.Equal(t, entity.StatusShipped, updated.Status)
	assert.Equal(t, created.ItemName, updated.ItemName)
	assert.Equal(t, created.RequesterID, updated.RequesterID)
}

func TestUpdate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    UpdateInput
		field string
	}{
		{"zero quantity", UpdateInput{Quantity: intPtr(0)}, "quantity"},
		{"blank item", UpdateInput{ItemName: strPtr("  ")}, "item_name"},
		{"bad status", UpdateInput{Status: strPtr("Shipped")}, "status"},
		{"bad link", UpdateInput{ItemLink: strPtr("ftp//broken")}, "item_link"},
		{"bad date", UpdateInput{RequestDate: strPtr("2024-13-40")}, "request_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			created, err := f.svc.Create(context.Background(), slipi, validInput())
			require.NoError(t, err)

			_, err = f.svc.Update(context.Background(), slipi, created.ID, tt.in)
			requireKind(t, err, errorbank.KindUnprocessableEntity)
			assert.Contains(t, errorbank.From(err).Fields(), tt.field)
			assert.Equal(t, created.UpdatedAt, f.store.rows[created.ID].UpdatedAt)
		})
	}
}

func TestDelete_SecondDeleteIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, slipi, validInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, slipi, req.ID))
	err = f.svc.Delete(ctx, slipi, req.ID)
	requireKind(t, err, errorbank.KindNotFound)

	_, err = f.svc.Get(ctx, admin, req.ID)
	requireKind(t, err, errorbank.KindNotFound)
}

func TestLifecyclePublishesEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, slipi, validInput())
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, admin, req.ID, string(entity.StatusApproved))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, admin, req.ID))

	require.Len(t, f.publisher.payloads, 3)
	var types []EventType
	for _, p := range f.publisher.payloads {
		var ev Event
		require.NoError(t, json.Unmarshal(p, &ev))
		assert.Equal(t, req.ID, ev.ID)
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{EventCreated, EventStatusChanged, EventDeleted}, types)
	assert.Empty(t, f.cache.data[fmt.Sprintf("procurement:%d", req.ID)])
}
