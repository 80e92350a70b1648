package leonardo

import "strings"

// Generation status values reported by the Leonardo API.
const (
	StatusPending  = "PENDING"
	StatusComplete = "COMPLETE"
	StatusFailed   = "FAILED"
)

// Request bounds applied by GenerationRequest.Normalize.
const (
	DefaultNumImages = 1
	MaxNumImages     = 4

	DefaultDimension = 1024
	MaxDimension     = 1536
	dimensionStep    = 8

	DefaultPresetStyle = "DYNAMIC"
)

// Preset style labels accepted by the generation endpoint. The API validates
// the label; unknown values are passed through unchanged.
const (
	PresetAnime        = "ANIME"
	PresetCinematic    = "CINEMATIC"
	PresetCreative     = "CREATIVE"
	PresetDynamic      = "DYNAMIC"
	PresetEnvironment  = "ENVIRONMENT"
	PresetGeneral      = "GENERAL"
	PresetIllustration = "ILLUSTRATION"
	PresetPhotography  = "PHOTOGRAPHY"
	PresetRender3D     = "RENDER_3D"
	PresetSketchBW     = "SKETCH_BW"
	PresetSketchColor  = "SKETCH_COLOR"
	PresetVibrant      = "VIBRANT"
)

// GenerationRequest describes one image-generation job. The JSON tags follow
// the wire format of POST /generations, which mixes snake_case and camelCase.
type GenerationRequest struct {
	Prompt      string `json:"prompt"`
	NumImages   int    `json:"num_images"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	PresetStyle string `json:"presetStyle"`
}

// Normalize returns a copy with defaults filled in and out-of-range fields
// clamped: image count lands in [1,4], dimensions land in [8,1536] rounded to
// the nearest multiple of 8, an empty preset becomes DYNAMIC. Values already
// in range pass through unchanged. Prompt whitespace is trimmed; an empty
// prompt is left empty and rejected at submission.
func (r GenerationRequest) Normalize() GenerationRequest {
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.NumImages = clampCount(r.NumImages)
	r.Width = clampDimension(r.Width)
	r.Height = clampDimension(r.Height)
	if r.PresetStyle == "" {
		r.PresetStyle = DefaultPresetStyle
	}
	return r
}

func clampCount(n int) int {
	if n <= 0 {
		return DefaultNumImages
	}
	if n > MaxNumImages {
		return MaxNumImages
	}
	return n
}

func clampDimension(v int) int {
	if v <= 0 {
		return DefaultDimension
	}
	if v > MaxDimension {
		v = MaxDimension
	}
	v = (v + dimensionStep/2) / dimensionStep * dimensionStep
	if v < dimensionStep {
		return dimensionStep
	}
	return v
}

// GeneratedImage is one produced artifact. Images with empty URLs are
// filtered out before results are returned.
type GeneratedImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// GenerationStatus is one status snapshot of a running job. Snapshots are
// transient: each poll fetches a fresh one, nothing is cached.
type GenerationStatus struct {
	Status string
	Images []GeneratedImage
}

// GenerationResult is the terminal outcome of a submit-then-poll workflow.
type GenerationResult struct {
	GenerationID string   `json:"generation_id"`
	ImageURLs    []string `json:"image_urls"`
}

// UserInfo describes the account that owns an API key, including the token
// balances Leonardo bills generations against.
type UserInfo struct {
	UserID                string `json:"user_id"`
	Username              string `json:"username"`
	APISubscriptionTokens int    `json:"api_subscription_tokens"`
	APIPaidTokens         int    `json:"api_paid_tokens"`
	TokenRenewalDate      string `json:"token_renewal_date"`
}

// GenerationListItem is one entry in a user's generation history.
type GenerationListItem struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"created_at"`
	Prompt    string   `json:"prompt"`
	ImageURLs []string `json:"image_urls"`
}

// collectURLs keeps the non-empty URLs of images, preserving order.
func collectURLs(images []GeneratedImage) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		if img.URL != "" {
			urls = append(urls, img.URL)
		}
	}
	return urls
}

// Wire envelopes. Leonardo wraps payloads in endpoint-specific objects; the
// *_by_pk names come from its Hasura-style REST surface.

type createGenerationResp struct {
	SDGenerationJob struct {
		GenerationID string `json:"generationId"`
	} `json:"sdGenerationJob"`
}

type getGenerationResp struct {
	GenerationsByPK *struct {
		Status          string           `json:"status"`
		GeneratedImages []GeneratedImage `json:"generated_images"`
	} `json:"generations_by_pk"`
}

type userDetailsResp struct {
	UserDetails []struct {
		User struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
		TokenRenewalDate      string `json:"tokenRenewalDate"`
		APISubscriptionTokens int    `json:"apiSubscriptionTokens"`
		APIPaidTokens         int    `json:"apiPaidTokens"`
	} `json:"user_details"`
}

type listGenerationsResp struct {
	Generations []struct {
		ID              string           `json:"id"`
		Status          string           `json:"status"`
		CreatedAt       string           `json:"createdAt"`
		Prompt          string           `json:"prompt"`
		GeneratedImages []GeneratedImage `json:"generated_images"`
	} `json:"generations"`
}

type deleteGenerationResp struct {
	DeleteGenerationsByPK *struct {
		ID string `json:"id"`
	} `json:"delete_generations_by_pk"`
}
