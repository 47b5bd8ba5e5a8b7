package test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBubbleMCPOverSSE tests the full flow through a running bubble-mcp server.
func TestBubbleMCPOverSSE(t *testing.T) {
	t.Skip("This test requires a running bubble-mcp server. Run manually with: go test -run TestBubbleMCPOverSSE ./test")

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	serverURL := "http://localhost:8080"
	opsURL := "http://localhost:8081"

	// Wait for server to start
	for i := 0; i < 10; i++ {
		resp, err := http.Get(opsURL + "/healthz")
		if err == nil && resp.StatusCode == 200 {
			resp.Body.Close()
			break
		}
		if i == 9 {
			t.Skip("bubble-mcp server not running. Start it with: ./bubble-mcp -transport=sse")
		}
		time.Sleep(time.Second)
	}

	t.Run("ops tool listing", func(t *testing.T) {
		resp, err := http.Get(opsURL + "/tools")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Tools, 7)
		assert.Equal(t, "bubble_get_schema", body.Tools[0].Name)
	})

	t.Run("list tools over MCP", func(t *testing.T) {
		// Open the SSE stream and learn the session's message endpoint.
		resp, err := http.Get(serverURL + "/sse")
		require.NoError(t, err)
		defer resp.Body.Close()
		reader := bufio.NewReader(resp.Body)

		event, data := readSSEEvent(t, reader)
		require.Equal(t, "endpoint", event)
		messageURL := data
		if strings.HasPrefix(messageURL, "/") {
			messageURL = serverURL + messageURL
		}

		postJSONRPC(t, messageURL, map[string]interface{}{
			"jsonrpc": "2.0",
			"method":  "initialize",
			"id":      1,
			"params": map[string]interface{}{
				"protocolVersion": "2025-03-26",
				"clientInfo":      map[string]interface{}{"name": "mcp-client-test", "version": "0.0.1"},
				"capabilities":    map[string]interface{}{},
			},
		})
		_, initData := readSSEEvent(t, reader)
		var initResp map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(initData), &initResp))
		require.NotNil(t, initResp["result"], "initialize failed: %s", initData)

		postJSONRPC(t, messageURL, map[string]interface{}{
			"jsonrpc": "2.0",
			"method":  "notifications/initialized",
		})

		postJSONRPC(t, messageURL, map[string]interface{}{
			"jsonrpc": "2.0",
			"method":  "tools/list",
			"id":      2,
		})
		_, listData := readSSEEvent(t, reader)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(listData), &response))

		result, ok := response["result"].(map[string]interface{})
		require.True(t, ok, "tools/list failed: %s", listData)

		tools, ok := result["tools"].([]interface{})
		require.True(t, ok)

		names := make([]string, 0, len(tools))
		for _, tool := range tools {
			names = append(names, tool.(map[string]interface{})["name"].(string))
		}
		assert.Contains(t, names, "bubble_get_schema")
		assert.Contains(t, names, "bubble_list")
		assert.Contains(t, names, "bubble_workflow")
		t.Logf("Tools: %v", names)
	})
}

// postJSONRPC posts a JSON-RPC message to the session endpoint. The reply
// arrives on the SSE stream, not in the POST response.
func postJSONRPC(t *testing.T, url string, request interface{}) {
	reqBody, err := json.Marshal(request)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", url, bytes.NewReader(reqBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Less(t, resp.StatusCode, 300, "POST %s returned %s", url, resp.Status)
}

// readSSEEvent reads one event from the SSE stream and returns its
// event name and data line.
func readSSEEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	var event, data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case line == "" && data != "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = line[len("event: "):]
		case strings.HasPrefix(line, "data: "):
			data = line[len("data: "):]
		}
	}
}
