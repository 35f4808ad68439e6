package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/procura/internal/config"
	"github.com/Additional-Code/procura/internal/entity"
	"github.com/Additional-Code/procura/internal/policy"
	repo "github.com/Additional-Code/procura/internal/repository/procurement"
	"github.com/Additional-Code/procura/pkg/errorbank"
)

type stubSource struct {
	rows   []entity.ProcurementRequest
	err    error
	filter repo.Filter
}

func (s *stubSource) All(_ context.Context, filter repo.Filter) ([]entity.ProcurementRequest, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	var out []entity.ProcurementRequest
	for _, r := range s.rows {
		if filter.VenueName != "" && r.VenueName != filter.VenueName {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

var admin = policy.Actor{UserID: 11, Name: "Super Admin", Role: entity.RoleSuperAdmin}

func newTestService(t *testing.T, src Source) *Service {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	var cfg config.Config
	cfg.Procurement.Location = loc
	return NewService(Params{Source: src, Config: cfg})
}

func sampleRows() []entity.ProcurementRequest {
	created := time.Date(2024, 1, 15, 2, 30, 0, 0, time.UTC)
	return []entity.ProcurementRequest{
		{
			ID:               7,
			RequesterID:      2,
			Requester:        &entity.User{ID: 2, Name: "Slipi"},
			RequestDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			VenueName:        "Slipi",
			ItemName:         "Kabel HDMI",
			Quantity:         5,
			UsageDescription: "Ruang rapat",
			RecipientContact: "Budi",
			Status:           entity.StatusPending,
			CreatedAt:        created,
			UpdatedAt:        created.Add(90 * time.Minute),
		},
		{
			ID:          8,
			RequesterID: 4,
			Requester:   &entity.User{ID: 4, Name: "Lippo"},
			RequestDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			VenueName:   "Lippo",
			ItemName:    "Proyektor",
			Quantity:    1,
			Status:      entity.StatusApproved,
			CreatedAt:   created,
			UpdatedAt:   created,
		},
	}
}

func TestExport_FiltersByStatus(t *testing.T) {
	svc := newTestService(t, &stubSource{rows: sampleRows()})

	table, err := svc.Export(context.Background(), admin, "", string(entity.StatusPending))
	require.NoError(t, err)

	assert.Len(t, table.Headers, 15)
	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Len(t, row, 15)
	assert.Equal(t, []string{
		"7", "15/01/2024", "Slipi", "Kabel HDMI", "5", "", "Ruang rapat", "Budi",
		"", "", "", "Tertunda", "Slipi", "15/01/2024 09:30", "15/01/2024 11:00",
	}, row)
}

func TestExport_Unfiltered(t *testing.T) {
	src := &stubSource{rows: sampleRows()}
	svc := newTestService(t, src)

	table, err := svc.Export(context.Background(), admin, "", "")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
	assert.Nil(t, src.filter.RequesterID)

	table, err = svc.Export(context.Background(), admin, "Lippo", "")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Proyektor", table.Rows[0][3])
}

func TestExport_EmptyResultKeepsHeaders(t *testing.T) {
	svc := newTestService(t, &stubSource{})

	table, err := svc.Export(context.Background(), admin, "Seskoad", "")
	require.NoError(t, err)
	assert.Equal(t, Headers, table.Headers)
	assert.Empty(t, table.Rows)
}

func TestExport_VenueUserForbidden(t *testing.T) {
	svc := newTestService(t, &stubSource{rows: sampleRows()})
	venueUser := policy.Actor{UserID: 2, Role: entity.RoleVenueUser, VenueName: "Slipi"}

	_, err := svc.Export(context.Background(), venueUser, "", "")
	require.Error(t, err)
	assert.True(t, errorbank.Is(err, errorbank.KindForbidden))
}

func TestExport_InvalidFilter(t *testing.T) {
	svc := newTestService(t, &stubSource{rows: sampleRows()})

	_, err := svc.Export(context.Background(), admin, "", "Done")
	require.Error(t, err)
	assert.True(t, errorbank.Is(err, errorbank.KindUnprocessableEntity))
}

func TestExport_SourceFailure(t *testing.T) {
	svc := newTestService(t, &stubSource{err: errors.New("connection reset")})

	_, err := svc.Export(context.Background(), admin, "", "")
	require.Error(t, err)
	assert.True(t, errorbank.Is(err, errorbank.KindInternal))
}
