// Command persona-smoke exercises a running persona server end to end:
// health, generation, chat, share, and export.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type TestClient struct {
	baseURL string
	client  *http.Client

	// persona ids captured from the generate step, reused downstream
	personaIDs []string
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the persona server")
	testType := flag.String("test", "all", "Test type: all, health, generate, chat, share, export")
	flag.Parse()

	client := NewTestClient(*baseURL)

	printHeader("Persona Server - Smoke Suite")
	fmt.Printf("%sBase URL: %s%s\n\n", colorCyan, *baseURL, colorReset)

	switch *testType {
	case "all":
		client.runAllTests()
	case "health":
		client.testHealthCheck()
	case "generate":
		client.testGenerate()
	case "chat":
		client.testGenerate()
		client.testChat()
	case "share":
		client.testGenerate()
		client.testShare()
	case "export":
		client.testGenerate()
		client.testExport()
	default:
		printError(fmt.Sprintf("Unknown test type: %s", *testType))
		fmt.Println("\nAvailable tests: all, health, generate, chat, share, export")
		os.Exit(1)
	}
}

func (tc *TestClient) runAllTests() {
	tests := []struct {
		name string
		fn   func() bool
	}{
		{"Health Check", tc.testHealthCheck},
		{"Persona Generation", tc.testGenerate},
		{"Persona Chat", tc.testChat},
		{"Share Link", tc.testShare},
		{"Export", tc.testExport},
	}

	passed := 0
	failed := 0

	for _, test := range tests {
		if test.fn() {
			passed++
		} else {
			failed++
		}
		fmt.Println()
	}

	printHeader("Test Summary")
	fmt.Printf("%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Printf("%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Printf("Total: %d\n", passed+failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func (tc *TestClient) testHealthCheck() bool {
	printTestHeader("Testing Health Check Endpoint")

	url := fmt.Sprintf("%s/health", tc.baseURL)
	fmt.Printf("GET %s\n", url)

	resp, err := tc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}
	if string(body) != "OK" {
		printError(fmt.Sprintf("Expected body 'OK', got '%s'", string(body)))
		return false
	}

	printSuccess("Health check passed")
	return true
}

func (tc *TestClient) testGenerate() bool {
	printTestHeader("Testing Persona Generation")

	request := map[string]any{
		"productPositioning": "A sustainable fashion e-commerce platform targeting eco-conscious millennials",
		"industry":           "retail",
		"targetRegion":       "north-america",
		"productCategory":    "e-commerce",
	}

	result, ok := tc.postJSON("/api/personas/generate", request)
	if !ok {
		return false
	}

	personas, _ := result["personas"].([]any)
	if len(personas) != 3 {
		printError(fmt.Sprintf("Expected 3 personas, got %d", len(personas)))
		return false
	}

	tc.personaIDs = tc.personaIDs[:0]
	for _, p := range personas {
		obj, _ := p.(map[string]any)
		id, _ := obj["id"].(string)
		name, _ := obj["name"].(string)
		if id == "" || name == "" {
			printError("Persona missing id or name")
			return false
		}
		tc.personaIDs = append(tc.personaIDs, id)
		fmt.Printf("  %s%s%s (%s)\n", colorGreen, name, colorReset, id)
	}

	printSuccess("Generated 3 personas")
	return true
}

func (tc *TestClient) testChat() bool {
	printTestHeader("Testing Persona Chat")

	if len(tc.personaIDs) == 0 {
		printError("No personas available; run generate first")
		return false
	}

	request := map[string]any{
		"personaId": tc.personaIDs[0],
		"message":   "What do you look for when choosing a new tool?",
	}

	result, ok := tc.postJSON("/api/personas/chat", request)
	if !ok {
		return false
	}

	reply, _ := result["response"].(string)
	if reply == "" {
		printError("Empty chat response")
		return false
	}

	fmt.Printf("\n%sReply:%s %s\n\n", colorYellow, colorReset, reply)
	printSuccess("Chat response received")
	return true
}

func (tc *TestClient) testShare() bool {
	printTestHeader("Testing Share Create + Resolve")

	if len(tc.personaIDs) == 0 {
		printError("No personas available; run generate first")
		return false
	}

	request := map[string]any{
		"personaIds": tc.personaIDs,
		"settings":   map[string]any{"publicAccess": true},
	}

	result, ok := tc.postJSON("/api/share", request)
	if !ok {
		return false
	}

	shareID, _ := result["shareId"].(string)
	if shareID == "" {
		printError("Missing shareId")
		return false
	}

	resp, err := tc.client.Get(fmt.Sprintf("%s/api/share?id=%s", tc.baseURL, shareID))
	if err != nil {
		printError(fmt.Sprintf("Resolve failed: %v", err))
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Resolve expected 200, got %d", resp.StatusCode))
		return false
	}

	printSuccess(fmt.Sprintf("Share %s created and resolved", shareID))
	return true
}

func (tc *TestClient) testExport() bool {
	printTestHeader("Testing Export (json)")

	if len(tc.personaIDs) == 0 {
		printError("No personas available; run generate first")
		return false
	}

	url := fmt.Sprintf("%s/api/personas/export/json?ids=%s", tc.baseURL, strings.Join(tc.personaIDs, ","))
	resp, err := tc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		printError("Missing attachment Content-Disposition")
		return false
	}

	printSuccess("Export returned an attachment")
	return true
}

func (tc *TestClient) postJSON(path string, request map[string]any) (map[string]any, bool) {
	url := tc.baseURL + path
	fmt.Printf("POST %s\n", url)

	jsonData, _ := json.Marshal(request)
	resp, err := tc.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return nil, false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Printf("Response: %s\n", string(body))
		return nil, false
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return nil, false
	}
	if success, _ := result["success"].(bool); !success {
		printError("Response success=false")
		return nil, false
	}
	return result, true
}

func printHeader(text string) {
	fmt.Printf("\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Printf("%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func printTestHeader(text string) {
	fmt.Printf("%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, text, colorReset)
}

func printError(text string) {
	fmt.Printf("%s✗ %s%s\n", colorRed, text, colorReset)
}
