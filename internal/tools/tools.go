package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amoylab/mockmcp/pkg/mcp"

	"github.com/tidwall/gjson"
)

func (r *Registry) registerBuiltins() {
	r.Register(mcp.ToolSchema{
		Name:        "add_numbers",
		Description: "Adds two numbers",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"a": {"type": "number", "description": "First number", "title": "Number A"},
				"b": {"type": "number", "description": "Second number", "title": "Number B"}
			},
			"required": ["a", "b"]
		}`),
	}, handleAddNumbers)

	r.Register(mcp.ToolSchema{
		Name:        "multiply_numbers",
		Description: "Multiplies two numbers",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"x": {"type": "number", "description": "First number", "title": "Number X"},
				"y": {"type": "number", "description": "Second number", "title": "Number Y"}
			},
			"required": ["x", "y"]
		}`),
	}, handleMultiplyNumbers)

	r.Register(mcp.ToolSchema{
		Name:        "get_greeting",
		Description: "Generates a greeting",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Name to greet", "title": "Name"},
				"language": {"type": "string", "description": "Language (ko, en)", "title": "Language", "default": "ko"}
			},
			"required": ["name"]
		}`),
	}, handleGetGreeting)

	r.Register(mcp.ToolSchema{
		Name:        "search_with_progress",
		Description: "Runs a search and reports progress along the way (for progress notification testing)",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search query", "title": "Query"},
				"steps": {"type": "integer", "description": "Number of progress steps (default: 5)", "title": "Steps", "default": 5}
			},
			"required": ["query"]
		}`),
	}, r.handleSearchWithProgress)
}

// formatNumber renders a float the way clients sent it: 2 stays "2", 2.5
// stays "2.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func handleAddNumbers(_ context.Context, args gjson.Result, _ ProgressFunc) (*mcp.CallToolResult, error) {
	a := args.Get("a").Float()
	b := args.Get("b").Float()
	return mcp.NewTextResult(fmt.Sprintf("%s + %s = %s",
		formatNumber(a), formatNumber(b), formatNumber(a+b))), nil
}

func handleMultiplyNumbers(_ context.Context, args gjson.Result, _ ProgressFunc) (*mcp.CallToolResult, error) {
	x := args.Get("x").Float()
	y := args.Get("y").Float()
	return mcp.NewTextResult(fmt.Sprintf("%s × %s = %s",
		formatNumber(x), formatNumber(y), formatNumber(x*y))), nil
}

func handleGetGreeting(_ context.Context, args gjson.Result, _ ProgressFunc) (*mcp.CallToolResult, error) {
	name := args.Get("name").String()
	if name == "" {
		name = "Guest"
	}
	language := args.Get("language").String()
	if language == "" {
		language = "ko"
	}

	if language == "ko" {
		return mcp.NewTextResult(fmt.Sprintf("안녕하세요, %s님!", name)), nil
	}
	return mcp.NewTextResult(fmt.Sprintf("Hello, %s!", name)), nil
}

var searchStageMessages = []string{
	"🔍 **Search started** - received query `%s`",
	"📝 **Analyzing keywords** - tokenizing and normalizing terms",
	"🗄️ **Querying database** - walking the search index",
	"⚙️ **Filtering results** - applying relevance filters",
	"📊 **Ranking results** - scoring and ordering matches",
	"✅ **Preparing final results** - formatting the response",
}

type dummySearchResult struct {
	title     string
	url       string
	snippet   string
	relevance int
	category  string
}

func dummySearchResults(query string) []dummySearchResult {
	slug := strings.ReplaceAll(query, " ", "-")
	return []dummySearchResult{
		{
			title:     fmt.Sprintf("%s overview and core concepts", query),
			url:       fmt.Sprintf("https://example.com/docs/%s-overview", slug),
			snippet:   fmt.Sprintf("A structured walkthrough of %s from the basics to advanced topics.", query),
			relevance: 98,
			category:  "docs",
		},
		{
			title:     fmt.Sprintf("%s practical guide (2024)", query),
			url:       fmt.Sprintf("https://example.com/guide/%s-practical", slug),
			snippet:   fmt.Sprintf("Step-by-step instructions for using %s effectively, with code examples.", query),
			relevance: 95,
			category:  "guide",
		},
		{
			title:     fmt.Sprintf("%s frequently asked questions", query),
			url:       fmt.Sprintf("https://example.com/faq/%s", slug),
			snippet:   fmt.Sprintf("Clear answers to the questions most often asked about %s.", query),
			relevance: 89,
			category:  "faq",
		},
		{
			title:     fmt.Sprintf("%s benchmark and comparison", query),
			url:       fmt.Sprintf("https://example.com/benchmark/%s", slug),
			snippet:   fmt.Sprintf("Performance measurements of %s across environments, compared with alternatives.", query),
			relevance: 82,
			category:  "analysis",
		},
		{
			title:     fmt.Sprintf("%s release notes and changes", query),
			url:       fmt.Sprintf("https://example.com/changelog/%s", slug),
			snippet:   fmt.Sprintf("Latest release notes, breaking changes and migration guides for %s.", query),
			relevance: 76,
			category:  "release",
		},
		{
			title:     fmt.Sprintf("%s community tips and best practices", query),
			url:       fmt.Sprintf("https://example.com/community/%s", slug),
			snippet:   fmt.Sprintf("Tips, tricks and best practices for %s collected from the community.", query),
			relevance: 71,
			category:  "community",
		},
	}
}

// handleSearchWithProgress advances through min(steps, 6) labeled stages,
// emitting one progress event before each stage's wall-clock pause. The total
// is one above the step count so the last event never reads as 100%.
func (r *Registry) handleSearchWithProgress(_ context.Context, args gjson.Result, progress ProgressFunc) (*mcp.CallToolResult, error) {
	query := args.Get("query").String()
	steps := int(args.Get("steps").Int())
	if !args.Get("steps").Exists() {
		steps = 5
	}

	totalSteps := steps
	if totalSteps > len(searchStageMessages) {
		totalSteps = len(searchStageMessages)
	}

	for i := 0; i < totalSteps; i++ {
		msg := searchStageMessages[i]
		if i == 0 {
			msg = fmt.Sprintf(msg, query)
		}
		progress(float64(i+1), float64(totalSteps+1), msg)
		time.Sleep(r.stepDelay)
	}

	results := dummySearchResults(query)
	resultCount := totalSteps
	if resultCount > len(results) {
		resultCount = len(results)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## 🎉 Search complete\n\n")
	fmt.Fprintf(&b, "> Found **%d results** for **`%s`**.\n\n", resultCount, query)
	fmt.Fprintf(&b, "| Item | Value |\n|------|----|\n")
	fmt.Fprintf(&b, "| 🔎 Query | `%s` |\n", query)
	fmt.Fprintf(&b, "| 📄 Results | **%d** |\n", resultCount)
	fmt.Fprintf(&b, "| ⏱️ Elapsed | **%ds** |\n", totalSteps)
	fmt.Fprintf(&b, "| 📊 Top relevance | **%d%%** |\n\n", results[0].relevance)
	fmt.Fprintf(&b, "---\n\n### 📋 Results\n")
	for i := 0; i < resultCount; i++ {
		res := results[i]
		fmt.Fprintf(&b, "\n#### %d. %s\n", i+1, res.title)
		fmt.Fprintf(&b, "- 🏷️ **Category**: `%s` | 📈 **Relevance**: %d%%\n", res.category, res.relevance)
		fmt.Fprintf(&b, "- 🔗 **URL**: [%s](%s)\n", res.url, res.url)
		fmt.Fprintf(&b, "- 💬 %s\n", res.snippet)
	}
	fmt.Fprintf(&b, "\n---\n\n*💡 Use a more specific query for more precise results.*")

	return mcp.NewTextResult(b.String()), nil
}
