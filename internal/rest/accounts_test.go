package rest

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/schema"
)

func TestClientsListNeverNil(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clients", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	})
	c, _ := newTestClient(t, handler, "tok")

	clients, err := c.Clients(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Empty(t, clients)
}

func TestAddClientRequiresID(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	c, _ := newTestClient(t, handler, "tok")

	_, err := c.AddClient(context.Background(), schema.Client{Broker: "motilal"})
	assert.True(t, errs.IsValidation(err))
	assert.Zero(t, calls.Load())
}

func TestDeleteClientBody(t *testing.T) {
	var body map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clients/delete", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	c, _ := newTestClient(t, handler, "tok")

	status, err := c.DeleteClient(context.Background(), "motilal", "c1")
	require.NoError(t, err)
	assert.True(t, status.Success)
	assert.Equal(t, "c1", body["client_id"])
	assert.Equal(t, "motilal", body["broker"])
}

func TestGroupRoundTrip(t *testing.T) {
	var added schema.Group
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/add_group":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&added))
			_, _ = w.Write([]byte(`{"success":true,"id":"g1"}`))
		case "/groups":
			_, _ = w.Write([]byte(`{"groups":[{"group_id":"g1","name":"momentum","members":["c1","c2"]}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	c, _ := newTestClient(t, handler, "tok")

	status, err := c.AddGroup(context.Background(), schema.Group{
		Name:    "momentum",
		Members: []string{"c1", "c2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "g1", status.ID)
	assert.Equal(t, []string{"c1", "c2"}, added.Members)

	groups, err := c.Groups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "momentum", groups[0].Name)
}

func TestEditGroupRequiresIdentity(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler(), "tok")
	_, err := c.EditGroup(context.Background(), schema.Group{Members: []string{"c1"}})
	assert.True(t, errs.IsValidation(err))
}

func TestSaveCopySetupValidation(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler(), "tok")

	_, err := c.SaveCopySetup(context.Background(), schema.CopySetup{Leader: "c1"})
	assert.True(t, errs.IsValidation(err), "name required")
	_, err = c.SaveCopySetup(context.Background(), schema.CopySetup{Name: "mirror"})
	assert.True(t, errs.IsValidation(err), "leader required")
}

func TestEnableDisableCopyShareBody(t *testing.T) {
	paths := map[string]string{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		paths[r.URL.Path] = body["setup_id"]
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	c, _ := newTestClient(t, handler, "tok")

	_, err := c.EnableCopy(context.Background(), "s1")
	require.NoError(t, err)
	_, err = c.DisableCopy(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, "s1", paths["/enable_copy"])
	assert.Equal(t, "s1", paths["/disable_copy"])
}

func TestCopySetupsListNeverNil(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/list_copytrading_setups", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	})
	c, _ := newTestClient(t, handler, "tok")

	setups, err := c.CopySetups(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, setups)
}
