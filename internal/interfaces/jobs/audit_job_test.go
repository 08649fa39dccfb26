package jobs_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/interfaces/jobs"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

type fakeAuditor struct {
	calls  atomic.Int32
	report *dto.AuditReportDTO
	err    error
	panic  bool
}

func (f *fakeAuditor) Run(ctx context.Context) (*dto.AuditReportDTO, error) {
	f.calls.Add(1)
	if f.panic {
		panic("boom")
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("sin deadline")
	}
	return f.report, f.err
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestNewScheduler_CronInvalido(t *testing.T) {
	_, err := jobs.NewScheduler("cada hora", &fakeAuditor{}, 0, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIT_CRON")
}

func TestNewScheduler_AceptaSegundosYDescriptores(t *testing.T) {
	for _, expr := range []string{"0 30 3 * * *", "*/5 * * * *", "@every 1h", "@daily"} {
		_, err := jobs.NewScheduler(expr, &fakeAuditor{}, 0, logger.Nop())
		assert.NoError(t, err, expr)
	}
}

func TestRunOnce_RegistraDiscrepancias(t *testing.T) {
	now := time.Now()
	aud := &fakeAuditor{report: &dto.AuditReportDTO{
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
		Checked:    4,
		Discrepancies: []dto.DiscrepancyDTO{
			{ProductID: "P1", Kind: "balance_mismatch", Expected: 7, Actual: 9},
		},
	}}
	var buf bytes.Buffer
	s, err := jobs.NewScheduler("@every 1h", aud, time.Second, logger.NewWithWriter(&buf, "info"))
	require.NoError(t, err)

	s.RunOnce()

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "P1", lines[0]["product_id"])
	assert.Equal(t, float64(7), lines[0]["expected"])
	assert.Equal(t, float64(9), lines[0]["actual"])
	assert.Equal(t, "audit", lines[0]["component"])

	assert.Equal(t, "info", lines[1]["level"])
	assert.Equal(t, float64(4), lines[1]["checked"])
	assert.Equal(t, float64(1), lines[1]["discrepancies"])
	assert.Equal(t, int32(1), aud.calls.Load())
}

func TestRunOnce_ErrorDelAuditor(t *testing.T) {
	aud := &fakeAuditor{err: errors.New("db caída")}
	var buf bytes.Buffer
	s, err := jobs.NewScheduler("@every 1h", aud, time.Second, logger.NewWithWriter(&buf, "info"))
	require.NoError(t, err)

	s.RunOnce()

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "db caída", lines[0]["error"])
}

func TestRunOnce_RecuperaPanic(t *testing.T) {
	aud := &fakeAuditor{panic: true}
	var buf bytes.Buffer
	s, err := jobs.NewScheduler("@every 1h", aud, time.Second, logger.NewWithWriter(&buf, "info"))
	require.NoError(t, err)

	assert.NotPanics(t, s.RunOnce)
	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "boom", lines[0]["panic"])
}

func TestScheduler_StartStop(t *testing.T) {
	aud := &fakeAuditor{report: &dto.AuditReportDTO{}}
	s, err := jobs.NewScheduler("@every 1s", aud, time.Second, logger.Nop())
	require.NoError(t, err)
	s.Start()
	s.Stop()
}
