package tool

import (
	"errors"
	"fmt"
	"os"
	"strings"

	contractx "github.com/storelane/shopassist/agent/contract"
)

const (
	policyBanner = "STORE RETURN POLICY"
	faqBanner    = "STORE FAQs"
)

type DocsConfig struct {
	PolicyPath string `envconfig:"POLICY_PATH" split_words:"true" default:"returnpolicy.txt"`
	FAQPath    string `envconfig:"FAQ_PATH" split_words:"true" default:"faqs.txt"`
}

// DocSource reads the flat-file policy and FAQ documents. Files are read on
// every call so edits are picked up without a restart; reads never mutate
// the source.
type DocSource struct {
	policyPath string
	faqPath    string
}

func NewDocSource(cfg DocsConfig) (*DocSource, error) {
	policyPath := strings.TrimSpace(cfg.PolicyPath)
	if policyPath == "" {
		return nil, errors.New("return policy path is required")
	}
	faqPath := strings.TrimSpace(cfg.FAQPath)
	if faqPath == "" {
		return nil, errors.New("faq path is required")
	}
	return &DocSource{policyPath: policyPath, faqPath: faqPath}, nil
}

// ReturnPolicy returns the full policy text behind a banner, or an
// error-variant result when the file is missing or empty.
func (d *DocSource) ReturnPolicy() contractx.LookupResult {
	content, errText := readDoc(d.policyPath, "return policy")
	if errText != "" {
		return contractx.LookupResult{Tool: ToolReturnPolicy, Error: errText}
	}
	return contractx.LookupResult{
		Tool:    ToolReturnPolicy,
		Payload: policyBanner + "\n\n" + content,
	}
}

// FAQs returns the full FAQ text behind a banner plus a count of detected
// question markers.
func (d *DocSource) FAQs() contractx.LookupResult {
	content, errText := readDoc(d.faqPath, "FAQ")
	if errText != "" {
		return contractx.LookupResult{Tool: ToolFAQs, Error: errText}
	}

	count := strings.Count(content, "Q:")
	payload := fmt.Sprintf("%s\n\n%s\n\nTotal FAQs loaded: %d", faqBanner, content, count)
	return contractx.LookupResult{
		Tool:    ToolFAQs,
		Payload: payload,
		Data:    count,
	}
}

func readDoc(path, kind string) (content string, errText string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Sprintf("ERROR: %s file not found at %s.", kind, path)
		}
		return "", fmt.Sprintf("ERROR reading %s file: %v", kind, err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "", fmt.Sprintf("%s file is empty. Please add content to %s.", kind, path)
	}
	return trimmed, ""
}
