package panelclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	apierrors "xui-vpn-bot/internal/errors"
	"xui-vpn-bot/internal/models"
)

// writeEnvelope writes the panel's generic response envelope
func writeEnvelope(t *testing.T, w http.ResponseWriter, success bool, msg string, obj interface{}) {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"success": success,
		"msg":     msg,
		"obj":     obj,
	})
	if err != nil {
		t.Fatalf("failed to marshal envelope: %v", err)
	}
	w.Write(raw)
}

// settingsBlob serializes a client list the way the panel stores it
func settingsBlob(t *testing.T, clients ...models.InboundClient) string {
	t.Helper()
	raw, err := json.Marshal(models.InboundSettings{Clients: clients})
	if err != nil {
		t.Fatalf("failed to marshal settings: %v", err)
	}
	return string(raw)
}

func TestFindClientInAllInboundsSkipsMalformedSettings(t *testing.T) {
	inbounds := []models.Inbound{
		{ID: 1, Remark: "Broken", Settings: "{not json"},
		{ID: 2, Remark: "Main", Settings: settingsBlob(t, models.InboundClient{ID: "u2", Email: "alice"})},
	}

	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/list", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", inbounds)
		})
	})

	found, err := client.FindClientInAllInbounds(context.Background(), "alice")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected a match")
	}
	if found.InboundID != 2 || found.InboundRemark != "Main" || found.Client.ID != "u2" {
		t.Errorf("unexpected match: %+v", found)
	}
}

func TestFindClientInAllInboundsReturnsFirstMatch(t *testing.T) {
	inbounds := []models.Inbound{
		{ID: 5, Remark: "First", Settings: settingsBlob(t, models.InboundClient{ID: "a", Email: "alice"})},
		{ID: 6, Remark: "Second", Settings: settingsBlob(t, models.InboundClient{ID: "b", Email: "alice"})},
	}

	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/list", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", inbounds)
		})
	})

	found, err := client.FindClientInAllInbounds(context.Background(), "alice")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if found == nil || found.InboundID != 5 {
		t.Errorf("expected match in inbound 5, got %+v", found)
	}
}

func TestFindClientInAllInboundsNotFound(t *testing.T) {
	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/list", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", []models.Inbound{
				{ID: 1, Settings: settingsBlob(t, models.InboundClient{ID: "x", Email: "bob"})},
			})
		})
	})

	found, err := client.FindClientInAllInbounds(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if found != nil {
		t.Errorf("expected no match, got %+v", found)
	}
}

func TestCreateClientPreCheckDuplicate(t *testing.T) {
	addClientCalled := false

	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/list", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", []models.Inbound{
				{ID: 3, Remark: "Main", Settings: settingsBlob(t, models.InboundClient{ID: "u1", Email: "alice"})},
			})
		})
		mux.HandleFunc("/panel/api/inbounds/addClient", func(w http.ResponseWriter, r *http.Request) {
			addClientCalled = true
			writeEnvelope(t, w, true, "", nil)
		})
	})

	err := client.CreateClient(context.Background(), "alice", "new-uuid", 3, true)

	var dup *apierrors.DuplicateClientError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateClientError, got %v", err)
	}
	if dup.Email != "alice" || dup.Existing != "Main" {
		t.Errorf("unexpected duplicate error: %+v", dup)
	}
	if addClientCalled {
		t.Error("addClient must not be contacted when the pre-check finds a duplicate")
	}
}

func TestCreateClientProviderDuplicate(t *testing.T) {
	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/list", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", []models.Inbound{})
		})
		mux.HandleFunc("/panel/api/inbounds/addClient", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, false, "Duplicate email: alice@vpn", nil)
		})
	})

	err := client.CreateClient(context.Background(), "alice", "new-uuid", 3, true)

	var dup *apierrors.DuplicateClientError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateClientError, got %v", err)
	}
	if dup.Existing != "alice@vpn" {
		t.Errorf("expected provider's conflicting label, got %q", dup.Existing)
	}
}

func TestCreateClientPayloadDefaults(t *testing.T) {
	var gotBody struct {
		ID       int    `json:"id"`
		Settings string `json:"settings"`
	}

	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/list", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", []models.Inbound{})
		})
		mux.HandleFunc("/panel/api/inbounds/addClient", func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, &gotBody); err != nil {
				t.Errorf("failed to decode addClient body: %v", err)
			}
			writeEnvelope(t, w, true, "", nil)
		})
	})

	if err := client.CreateClient(context.Background(), "alice", "uuid-1", 3, true); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	if gotBody.ID != 3 {
		t.Errorf("expected inbound id 3, got %d", gotBody.ID)
	}

	var settings models.InboundSettings
	if err := json.Unmarshal([]byte(gotBody.Settings), &settings); err != nil {
		t.Fatalf("settings is not a JSON string: %v", err)
	}
	if len(settings.Clients) != 1 {
		t.Fatalf("expected one client, got %d", len(settings.Clients))
	}

	created := settings.Clients[0]
	if created.ID != "uuid-1" || created.Email != "alice" || !created.Enable {
		t.Errorf("unexpected client payload: %+v", created)
	}
	if created.Flow != "" || created.LimitIP != 0 || created.TotalGB != 0 || created.ExpiryTime != 0 || created.Reset != 0 {
		t.Errorf("expected default quota/expiry fields, got %+v", created)
	}
	for _, field := range []string{`"flow"`, `"limitIp"`, `"totalGB"`, `"expiryTime"`, `"tgId"`, `"subId"`, `"reset"`} {
		if !strings.Contains(gotBody.Settings, field) {
			t.Errorf("settings payload missing field %s: %s", field, gotBody.Settings)
		}
	}
}

func TestGetClientTrafficReturnsSample(t *testing.T) {
	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/getClientTraffics/", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", models.ClientStat{Email: "alice", Up: 100, Down: 250})
		})
	})

	traffic, err := client.GetClientTraffic(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetClientTraffic failed: %v", err)
	}
	if traffic.Up != 100 || traffic.Down != 250 || traffic.Total != 350 {
		t.Errorf("unexpected traffic: %+v", traffic)
	}
}

func TestGetClientTrafficNoDataIsZeroSample(t *testing.T) {
	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/getClientTraffics/", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, false, "record not found", nil)
		})
	})

	traffic, err := client.GetClientTraffic(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("expected zero sample, got error: %v", err)
	}
	if traffic != (models.Traffic{}) {
		t.Errorf("expected zeroed sample, got %+v", traffic)
	}
}

func TestUpdateClientStatus(t *testing.T) {
	var gotBody map[string]interface{}

	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/get/7", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", models.Inbound{
				ID:       7,
				Settings: settingsBlob(t, models.InboundClient{ID: "u1", Email: "alice", Enable: true}),
			})
		})
		mux.HandleFunc("/panel/api/inbounds/updateClient/u1", func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			json.Unmarshal(raw, &gotBody)
			writeEnvelope(t, w, true, "", nil)
		})
	})

	if err := client.UpdateClientStatus(context.Background(), "alice", "u1", 7, false); err != nil {
		t.Fatalf("UpdateClientStatus failed: %v", err)
	}

	if gotBody["id"] != "u1" {
		t.Errorf("expected credential id u1, got %v", gotBody["id"])
	}
	if gotBody["inboundId"] != float64(7) {
		t.Errorf("expected inboundId 7, got %v", gotBody["inboundId"])
	}
	if gotBody["enable"] != false {
		t.Errorf("expected enable false, got %v", gotBody["enable"])
	}
}

func TestUpdateClientStatusNotFound(t *testing.T) {
	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/get/7", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", models.Inbound{
				ID:       7,
				Settings: settingsBlob(t, models.InboundClient{ID: "other", Email: "bob"}),
			})
		})
	})

	err := client.UpdateClientStatus(context.Background(), "alice", "u1", 7, false)

	var notFound *apierrors.ClientNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ClientNotFoundError, got %v", err)
	}
}

func TestDeleteClientFromAllInbounds(t *testing.T) {
	deleted := false

	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/list", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", []models.Inbound{
				{ID: 3, Remark: "Main", Settings: settingsBlob(t, models.InboundClient{ID: "u1", Email: "alice"})},
			})
		})
		mux.HandleFunc("/panel/api/inbounds/3/delClient/u1", func(w http.ResponseWriter, r *http.Request) {
			deleted = true
			writeEnvelope(t, w, true, "", nil)
		})
	})

	found, err := client.DeleteClientFromAllInbounds(context.Background(), "alice")
	if err != nil {
		t.Fatalf("DeleteClientFromAllInbounds failed: %v", err)
	}
	if !found || !deleted {
		t.Errorf("expected deletion, found=%v deleted=%v", found, deleted)
	}
}

func TestDeleteClientFromAllInboundsAbsentLabel(t *testing.T) {
	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/list", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", []models.Inbound{})
		})
	})

	found, err := client.DeleteClientFromAllInbounds(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("expected no error for absent label, got %v", err)
	}
	if found {
		t.Error("expected found=false for absent label")
	}
}

func TestDeleteClientRejection(t *testing.T) {
	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/3/delClient/u1", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, false, "client not in inbound", nil)
		})
	})

	err := client.DeleteClient(context.Background(), "u1", 3)

	var respErr *apierrors.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError, got %v", err)
	}
	if respErr.Body != "client not in inbound" {
		t.Errorf("expected panel message in error, got %q", respErr.Body)
	}
}

func TestCreateClientGenericRejection(t *testing.T) {
	client := startPanel(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/panel/api/inbounds/list", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, true, "", []models.Inbound{})
		})
		mux.HandleFunc("/panel/api/inbounds/addClient", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, false, "invalid settings", nil)
		})
	})

	err := client.CreateClient(context.Background(), "alice", "new-uuid", 3, true)

	var respErr *apierrors.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError, got %v", err)
	}
	if respErr.Body != "invalid settings" {
		t.Errorf("expected panel message in error, got %q", respErr.Body)
	}

	var dup *apierrors.DuplicateClientError
	if errors.As(err, &dup) {
		t.Errorf("non-duplicate rejection must not be a DuplicateClientError: %v", err)
	}
}
