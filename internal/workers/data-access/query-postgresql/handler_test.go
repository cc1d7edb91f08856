// internal/workers/data-access/query-postgresql/handler_test.go
package querypostgresql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	apperrors "resonate-workers/internal/common/errors"
	"resonate-workers/internal/common/logger"
	"resonate-workers/internal/models"
	"resonate-workers/internal/workers/data-access/query-postgresql/queries"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:     5 * time.Second,
		MaxPoolSize: 100,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createBenchmarkLogger(b *testing.B) logger.Logger {
	zapLogger, _ := zap.NewProduction()
	return logger.NewZapAdapter(zapLogger)
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	return db, mock
}

var publisherColumns = []string{"id", "name", "market", "status", "vendor_status", "verification_level", "audience"}

func publisherRows() *sqlmock.Rows {
	return sqlmock.NewRows(publisherColumns).
		AddRow("pub-1", "El Tecolote", "sf", "active", "registered", "verified",
			[]byte(`{"geographic":{"citywide":false,"neighborhoods":["mission"]},"demographic":{"languages":["spanish","english"]}}`)).
		AddRow("pub-2", "Excelsior Action", "sf", "active", nil, nil, []byte(`{}`))
}

func platformRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"publisher_id", "platform", "follower_count", "engagement_rate", "verified"}).
		AddRow("pub-1", "instagram", int64(12000), 4.5, true).
		AddRow("pub-1", "newsletter", int64(3000), nil, false)
}

func rateCardRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"publisher_id", "deliverable_type", "platform", "price_cents"}).
		AddRow("pub-1", "post", "instagram", int64(25000)).
		AddRow("pub-1", "story", "instagram", int64(15000)).
		AddRow("pub-2", "feature", "newsletter", int64(40000))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		mockQuery      func(mock sqlmock.Sqlmock)
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "publisher profile",
			input: &Input{QueryType: string(QueryTypePublisherProfile), PublisherID: "pub-1"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM publishers p`).
					WithArgs("pub-1").
					WillReturnRows(sqlmock.NewRows(publisherColumns).
						AddRow("pub-1", "El Tecolote", "sf", "paused", "registered", "verified",
							[]byte(`{"geographic":{"citywide":false,"neighborhoods":["mission"]}}`)))
				mock.ExpectQuery(`FROM publisher_platforms`).WillReturnRows(platformRows())
				mock.ExpectQuery(`FROM publisher_rate_cards`).WillReturnRows(rateCardRows())
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)

				p, ok := output.Data.(*models.PublisherProfile)
				require.True(t, ok)
				assert.Equal(t, "pub-1", p.ID)
				assert.Equal(t, "paused", p.Status, "profile lookups ignore status")
				assert.Equal(t, []string{"mission"}, p.Audience.Geographic.Neighborhoods)
				assert.Equal(t, int64(15000), p.TotalFollowers())
				require.Len(t, p.RateCard, 2)
			},
		},
		{
			name:  "publisher profiles by market",
			input: &Input{QueryType: string(QueryTypePublisherProfiles), Market: "sf"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM publishers p`).
					WithArgs("sf", 100).
					WillReturnRows(publisherRows())
				mock.ExpectQuery(`FROM publisher_platforms`).WillReturnRows(platformRows())
				mock.ExpectQuery(`FROM publisher_rate_cards`).WillReturnRows(rateCardRows())
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)

				publishers, ok := output.Data.([]models.PublisherProfile)
				require.True(t, ok)
				assert.Equal(t, "pub-1", publishers[0].ID)
				assert.Equal(t, "", publishers[1].VendorStatus)
				assert.Empty(t, publishers[1].Platforms)
				require.Len(t, publishers[1].RateCard, 1)
			},
		},
		{
			name:  "publisher rate card for one publisher",
			input: &Input{QueryType: string(QueryTypePublisherRateCard), PublisherID: "pub-2"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM publisher_rate_cards`).
					WillReturnRows(sqlmock.NewRows([]string{"publisher_id", "deliverable_type", "platform", "price_cents"}).
						AddRow("pub-2", "feature", "newsletter", int64(40000)))
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)

				cards, ok := output.Data.(map[string][]models.RateCardItem)
				require.True(t, ok)
				assert.Equal(t, int64(40000), cards["pub-2"][0].PriceCents)
			},
		},
		{
			name:  "publisher rate cards for many publishers",
			input: &Input{QueryType: string(QueryTypePublisherRateCard), PublisherIDs: []string{"pub-1", "pub-2"}},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM publisher_rate_cards`).WillReturnRows(rateCardRows())
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 3, output.RowCount)

				cards := output.Data.(map[string][]models.RateCardItem)
				assert.Len(t, cards["pub-1"], 2)
				assert.Len(t, cards["pub-2"], 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			defer db.Close()

			tt.mockQuery(mock)

			handler := NewHandler(createTestConfig(), db, createTestLogger(t))
			output, err := handler.execute(context.Background(), tt.input)

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.GreaterOrEqual(t, output.QueryExecutionTime, int64(0))
			tt.validateOutput(t, output)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_ProfileNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM publishers p`).
		WithArgs("pub-404").
		WillReturnError(sql.ErrNoRows)

	handler := NewHandler(createTestConfig(), db, createTestLogger(t))
	output, err := handler.execute(context.Background(), &Input{
		QueryType:   string(QueryTypePublisherProfile),
		PublisherID: "pub-404",
	})

	require.NoError(t, err)
	assert.Nil(t, output.Data)
	assert.Equal(t, 0, output.RowCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_EmptyMarket(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM publishers p`).
		WillReturnRows(sqlmock.NewRows(publisherColumns))

	handler := NewHandler(createTestConfig(), db, createTestLogger(t))
	output, err := handler.execute(context.Background(), &Input{
		QueryType: string(QueryTypePublisherProfiles),
		Market:    "chicago",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, output.RowCount)
	assert.Equal(t, []models.PublisherProfile{}, output.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Timeout(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM publishers p`).
		WithArgs("pub-1").
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(publisherRows())

	config := createTestConfig()
	config.Timeout = 50 * time.Millisecond

	handler := NewHandler(config, db, createTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	output, err := handler.execute(ctx, &Input{QueryType: string(QueryTypePublisherProfile), PublisherID: "pub-1"})
	assert.Nil(t, output)
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeQueryTimeout, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_QueryErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         *Input
		mockQuery     func(mock sqlmock.Sqlmock)
		expectedCode  apperrors.ErrorCode
		expectedErr   error
		errorContains string
	}{
		{
			name:          "unknown query type",
			input:         &Input{QueryType: "campaign_history"},
			expectedCode:  apperrors.ErrCodeInvalidQueryType,
			errorContains: "INVALID_QUERY_TYPE",
		},
		{
			name:  "database error",
			input: &Input{QueryType: string(QueryTypePublisherProfile), PublisherID: "pub-1"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM publishers p`).
					WithArgs("pub-1").
					WillReturnError(errors.New("database connection failed"))
			},
			expectedCode:  apperrors.ErrCodeQueryExecutionFailed,
			errorContains: "QUERY_EXECUTION_FAILED",
		},
		{
			name:  "corrupt audience document",
			input: &Input{QueryType: string(QueryTypePublisherProfiles), PublisherIDs: []string{"pub-1"}},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM publishers p`).
					WillReturnRows(sqlmock.NewRows(publisherColumns).
						AddRow("pub-1", "El Tecolote", "sf", "active", nil, nil, []byte(`{"geographic":`)))
			},
			expectedCode:  apperrors.ErrCodeQueryExecutionFailed,
			errorContains: "QUERY_EXECUTION_FAILED",
		},
		{
			name:          "missing publisher id",
			input:         &Input{QueryType: string(QueryTypePublisherProfile)},
			expectedCode:  apperrors.ErrCodeInputValidationFailed,
			expectedErr:   queries.ErrMissingParam,
			errorContains: "INPUT_VALIDATION_FAILED",
		},
		{
			name:          "profiles without market or ids",
			input:         &Input{QueryType: string(QueryTypePublisherProfiles)},
			expectedCode:  apperrors.ErrCodeInputValidationFailed,
			errorContains: "INPUT_VALIDATION_FAILED",
		},
		{
			name:          "rate card without ids",
			input:         &Input{QueryType: string(QueryTypePublisherRateCard), PublisherID: "  "},
			expectedCode:  apperrors.ErrCodeInputValidationFailed,
			errorContains: "INPUT_VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			defer db.Close()

			if tt.mockQuery != nil {
				tt.mockQuery(mock)
			}

			handler := NewHandler(createTestConfig(), db, createTestLogger(t))
			output, err := handler.execute(context.Background(), tt.input)

			assert.Nil(t, output)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, stdErr.Code)
			if tt.expectedErr != nil {
				assert.Contains(t, stdErr.Details, tt.expectedErr.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, createTestLogger(t))
	output, err := handler.execute(context.Background(), nil)

	assert.Nil(t, output)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInputValidationFailed, stdErr.Code)
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkHandler_Execute_PublisherProfiles(b *testing.B) {
	db, mock, err := sqlmock.New()
	if err != nil {
		b.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	for i := 0; i < b.N; i++ {
		mock.ExpectQuery(`FROM publishers p`).WillReturnRows(publisherRows())
		mock.ExpectQuery(`FROM publisher_platforms`).WillReturnRows(platformRows())
		mock.ExpectQuery(`FROM publisher_rate_cards`).WillReturnRows(rateCardRows())
	}

	handler := NewHandler(createTestConfig(), db, createBenchmarkLogger(b))
	input := &Input{QueryType: string(QueryTypePublisherProfiles), Market: "sf"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = handler.execute(context.Background(), input)
	}
}
