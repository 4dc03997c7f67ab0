package commands

import (
	"io"
	"net/http"
	"strings"
	"time"

	"quill/internal/config"
	"quill/internal/debug"
	"quill/internal/object"
	"quill/internal/script"
)

// WebGetCommand issues an HTTP request and stores the status code and body on
// the entry. Always run waited for in practice; the request happens on a
// worker goroutine and results land back on the heartbeat.
type WebGetCommand struct{}

var webGetMeta = &script.CommandMeta{
	Name:            "webget",
	Syntax:          "webget [<url>] (data:<body>) (method:<method>) (headers:<name>/<value>|...) (timeout:<duration>)",
	MinArgs:         1,
	MaxArgs:         5,
	Holdable:        true,
	PrefixesHandled: []string{"data", "method", "headers", "timeout"},
}

func (c *WebGetCommand) Meta() *script.CommandMeta { return webGetMeta }

func (c *WebGetCommand) Parse(entry *script.Entry) error {
	for _, arg := range entry.Arguments() {
		if !entry.HasObject("url") {
			// The scheme's colon splits as a prefix; reassemble the full text.
			entry.AddObject("url", object.NewElement(arg.FullValue()))
		} else {
			arg.ReportUnhandled()
		}
	}
	if !entry.HasObject("url") {
		return script.InvalidArguments("must specify a url")
	}
	return nil
}

func (c *WebGetCommand) Execute(entry *script.Entry) error {
	url := entry.Element("url")
	fail := func(format string, a ...any) {
		debug.EchoError(entry, format, a...)
		entry.AddObject("failed", object.ElementFromBool(true))
		entry.SetFinished(true)
	}
	if !config.Core.Web.Allow {
		fail("web access is disabled in the configuration")
		return nil
	}
	method := "GET"
	var body io.Reader
	if dataArg := entry.ArgForPrefix("data"); dataArg != nil {
		method = "POST"
		body = strings.NewReader(dataArg.Value())
	}
	if methodArg := entry.ArgForPrefixAsElement("method", ""); methodArg != nil {
		method = strings.ToUpper(methodArg.String())
	}
	timeout := time.Duration(config.Core.Web.TimeoutSeconds) * time.Second
	if timeoutArg := entry.ArgForPrefixAsElement("timeout", ""); timeoutArg != nil {
		if d, err := object.ParseDuration(timeoutArg.String()); err == nil {
			timeout = time.Duration(d.Millis()) * time.Millisecond
		}
	}
	req, err := http.NewRequest(method, url.String(), body)
	if err != nil {
		fail("webget failed to build request: %v", err)
		return nil
	}
	if headersArg := entry.ArgForPrefixAsElement("headers", ""); headersArg != nil {
		for _, pair := range object.ParseList(headersArg.String()).Items {
			name, value, ok := strings.Cut(pair.Identify(), "/")
			if !ok {
				fail("invalid header pair '%s'", pair.Identify())
				return nil
			}
			req.Header.Set(name, value)
		}
	}
	debug.Report(entry, "webget", "url="+url.String(), "method="+method)
	client := &http.Client{Timeout: timeout}
	runHoldable(entry, func(complete func(apply func())) {
		resp, err := client.Do(req)
		var status int
		var payload []byte
		if err == nil {
			status = resp.StatusCode
			payload, err = io.ReadAll(resp.Body)
			resp.Body.Close()
		}
		complete(func() {
			if err != nil {
				debug.EchoError(entry, "webget failed: %v", err)
				entry.AddObject("failed", object.ElementFromBool(true))
			} else {
				entry.AddObject("failed", object.ElementFromBool(false))
				entry.AddObject("status", object.ElementFromInt(int64(status)))
				entry.AddObject("result", object.NewBinary(payload))
			}
			entry.SetFinished(true)
		})
	})
	return nil
}
