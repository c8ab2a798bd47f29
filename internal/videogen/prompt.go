package videogen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"promoclip/internal/infra"
	"promoclip/internal/providers/chat"
)

const promptTemperature = 0.7

const defaultVideoSystemPrompt = "You are an expert video prompt engineer. " +
	"Turn the product description into one vivid, concrete prompt for a text-to-video model. " +
	"Describe the scene, camera movement, lighting and mood in a single paragraph. " +
	"Respond with the prompt only."

// languageNames maps the target-language tags the extension offers to the
// wording used inside the system prompt.
var languageNames = map[string]string{
	"zh-CN": "Simplified Chinese",
	"en":    "English",
	"ja":    "Japanese",
	"ko":    "Korean",
}

// PromptGenerator turns a product description into an optimized video prompt
// by calling the configured text model once.
type PromptGenerator struct {
	httpClient *http.Client
	logger     *infra.Logger
}

// PromptGeneratorOptions configures the generator's injected dependencies.
type PromptGeneratorOptions struct {
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// NewPromptGenerator constructs a prompt generator.
func NewPromptGenerator(opts PromptGeneratorOptions) *PromptGenerator {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &PromptGenerator{httpClient: httpClient, logger: logger}
}

// Generate issues a single chat completion with the video system prompt and
// the product description. A missing text API key is terminal before any
// network call, and an empty generation counts as failure, not success.
func (g *PromptGenerator) Generate(ctx context.Context, productDescription, videoSystemPrompt string, cfg VideoConfig, settings Settings) (string, error) {
	if strings.TrimSpace(settings.APIKey) == "" {
		return "", errors.New(msgTextKeyMissing)
	}

	client := chat.NewClient(chat.Options{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		HTTPClient: g.httpClient,
		Logger:     g.logger,
	})
	out, err := client.Complete(ctx, chat.Request{
		System:      BuildSystemPrompt(videoSystemPrompt, cfg),
		User:        productDescription,
		Temperature: promptTemperature,
	})
	if err != nil {
		return "", promptStageError(err)
	}
	prompt := strings.TrimSpace(out.Content)
	if prompt == "" {
		return "", errors.New(msgEmptyPrompt)
	}
	g.logger.Debug().Int("prompt_len", len(prompt)).Msg("videogen: prompt generated")
	return prompt, nil
}

// BuildSystemPrompt folds the brand, style and target-language hints from
// the config into the caller-supplied system prompt.
func BuildSystemPrompt(base string, cfg VideoConfig) string {
	sb := &strings.Builder{}
	if strings.TrimSpace(base) != "" {
		sb.WriteString(strings.TrimSpace(base))
	} else {
		sb.WriteString(defaultVideoSystemPrompt)
	}
	if style := strings.TrimSpace(cfg.VideoStyle); style != "" {
		title := cases.Title(language.English)
		fmt.Fprintf(sb, " Video style: %s.", title.String(strings.ReplaceAll(style, "-", " ")))
	}
	if name := languageName(cfg.TargetLanguage); name != "" {
		fmt.Fprintf(sb, " Write the prompt in %s.", name)
	}
	if brand := strings.TrimSpace(cfg.BrandName); brand != "" {
		if brandURL := strings.TrimSpace(cfg.BrandURL); brandURL != "" {
			fmt.Fprintf(sb, " Feature the brand %q (%s) naturally in the scene.", brand, brandURL)
		} else {
			fmt.Fprintf(sb, " Feature the brand %q naturally in the scene.", brand)
		}
	}
	return sb.String()
}

// languageName resolves a BCP 47 tag to prompt wording. Unknown but valid
// tags are normalized and used verbatim; garbage is dropped.
func languageName(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if name, ok := languageNames[tag]; ok {
		return name
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	if name, ok := languageNames[parsed.String()]; ok {
		return name
	}
	return parsed.String()
}

// promptStageError rewraps chat-client failures into the messages the
// extension surfaces for the prompt stage.
func promptStageError(err error) error {
	if errors.Is(err, chat.ErrMissingAPIKey) {
		return errors.New(msgTextKeyMissing)
	}
	var apiErr *chat.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return errors.New(apiErr.Message)
		}
		return fmt.Errorf("Prompt API Error: %d", apiErr.StatusCode)
	}
	return err
}
