package printer_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sh/liftoff/internal/model"
	"github.com/liftoff-sh/liftoff/internal/printer"
)

func testDeployment() model.Deployment {
	return model.Deployment{
		ID:                 "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		ProjectName:        "acme-shop",
		RepoURL:            "https://github.com/acme/shop",
		Region:             "us-central1",
		Status:             model.DeploymentStatusSucceeded,
		DatabaseConnection: "acme:us-central1:acme-shop-postgres-ab12cd",
		CostEstimate:       18,
		CreatedAt:          time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Services: []model.DeployedService{
			{Name: "shop-api", URL: "https://shop-api-xyz.a.run.app", Status: "deployed"},
		},
	}
}

func TestTablePrinterPrintHistory(t *testing.T) {
	t.Run("Deployments should render as a table with a header.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		var buf bytes.Buffer
		p := printer.NewTablePrinter(&buf)

		require.NoError(p.PrintHistory([]model.Deployment{testDeployment()}))

		out := buf.String()
		assert.Contains(out, "ID")
		assert.Contains(out, "PROJECT")
		assert.Contains(out, "STATUS")
		assert.Contains(out, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		assert.Contains(out, "acme-shop")
		assert.Contains(out, "succeeded")
	})

	t.Run("An empty history should print nothing.", func(t *testing.T) {
		var buf bytes.Buffer
		p := printer.NewTablePrinter(&buf)

		require.NoError(t, p.PrintHistory(nil))

		assert.Empty(t, buf.String())
	})
}

func TestTablePrinterPrintDeployment(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	d := testDeployment()
	d.Error = "one service failed"
	require.NoError(p.PrintDeployment(d))

	out := buf.String()
	assert.Contains(out, "Project:    acme-shop")
	assert.Contains(out, "Status:     succeeded")
	assert.Contains(out, "Database:   acme:us-central1:acme-shop-postgres-ab12cd")
	assert.Contains(out, "Est. cost:  $18.00/month")
	assert.Contains(out, "Error:      one service failed")
	assert.Contains(out, "shop-api")
	assert.Contains(out, "https://shop-api-xyz.a.run.app")
}

func TestTablePrinterPrintChecks(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	require.NoError(p.PrintChecks([]model.CheckResult{
		{ID: "gcloud", Status: model.CheckStatusOK, Message: "/usr/bin/gcloud"},
		{ID: "docker", Status: model.CheckStatusWarning, Message: "daemon not reachable"},
		{ID: "terraform", Status: model.CheckStatusError, Message: "terraform not found in PATH"},
	}))

	out := buf.String()
	assert.Contains(out, "OK gcloud")
	assert.Contains(out, "!! docker")
	assert.Contains(out, "XX terraform")
}

func TestJSONPrinterPrintHistory(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	require.NoError(p.PrintHistory([]model.Deployment{testDeployment()}))

	var items []map[string]interface{}
	require.NoError(json.Unmarshal(buf.Bytes(), &items))
	require.Len(items, 1)
	assert.Equal("01ARZ3NDEKTSV4RRFFQ69G5FAV", items[0]["id"])
	assert.Equal("acme-shop", items[0]["project_name"])
	assert.Equal("succeeded", items[0]["status"])
	assert.Equal(float64(1), items[0]["services"])
}

func TestJSONPrinterPrintDeployment(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	require.NoError(p.PrintDeployment(testDeployment()))

	var out map[string]interface{}
	require.NoError(json.Unmarshal(buf.Bytes(), &out))
	assert.Equal("https://github.com/acme/shop", out["repo_url"])
	assert.Equal(float64(18), out["cost_estimate"])
	// Empty error fields are omitted.
	_, hasError := out["error"]
	assert.False(hasError)

	services, ok := out["services"].([]interface{})
	require.True(ok)
	require.Len(services, 1)
}

func TestTimeAgo(t *testing.T) {
	now := time.Now().UTC()

	tests := map[string]struct {
		t      time.Time
		expOut string
	}{
		"Seconds ago.":     {t: now.Add(-30 * time.Second), expOut: "30 seconds ago (UTC)"},
		"A single minute.": {t: now.Add(-1 * time.Minute), expOut: "1 minute ago (UTC)"},
		"Hours ago.":       {t: now.Add(-3 * time.Hour), expOut: "3 hours ago (UTC)"},
		"Days ago.":        {t: now.Add(-48 * time.Hour), expOut: "2 days ago (UTC)"},
		"Future times.":    {t: now.Add(time.Hour), expOut: "in the future (UTC)"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expOut, printer.TimeAgo(test.t))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-20 10:30:00 UTC", printer.FormatTimestamp(ts))
}
