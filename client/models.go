package client

// User is the authenticated account as the backend reports it.
type User struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	WhatsAppNumber     string `json:"whatsapp_number,omitempty"`
	GeminiPromptPrefix string `json:"gemini_prompt_prefix,omitempty"`
	CreatedAt          string `json:"created_at,omitempty"`
	UpdatedAt          string `json:"updated_at,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	WhatsAppNumber     string `json:"whatsapp_number"`
	GeminiPromptPrefix string `json:"gemini_prompt_prefix,omitempty"`
}

// AuthResult is returned by login and refresh.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CatalogEntry is one objective or visual style. Entries are immutable once
// fetched.
type CatalogEntry struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

type ObjectiveList struct {
	Objectives []CatalogEntry `json:"objectives"`
}

type StyleList struct {
	Styles []CatalogEntry `json:"styles"`
}

// Catalogs is the joined result of loading both reference lists.
type Catalogs struct {
	Objectives []CatalogEntry `json:"objectives"`
	Styles     []CatalogEntry `json:"styles"`
}

// ImageMode controls what the backend does with an uploaded image.
type ImageMode string

const (
	ImageModeAuto     ImageMode = "auto"
	ImageModeOriginal ImageMode = "original"
)

// GenerateRequest asks for a first draft. Zero values are treated as absent.
type GenerateRequest struct {
	Message       string    `json:"message"`
	ObjectiveID   int64     `json:"objective_id,omitempty"`
	StyleID       int64     `json:"style_id,omitempty"`
	TemplateID    int64     `json:"template_id,omitempty"`
	PostObjective string    `json:"post_objective,omitempty"`
	PostStyle     string    `json:"post_style,omitempty"`
	ImageMode     ImageMode `json:"image_mode,omitempty"`
	ColorPalette  string    `json:"color_palette,omitempty"`

	// Image switches the request to multipart form data.
	Image *Upload `json:"-"`
}

// RegenerateRequest asks for a variation of a previous draft. PostID is the
// preferred correlation key.
type RegenerateRequest struct {
	PreviousContent   string `json:"previous_content"`
	OriginalMessage   string `json:"original_message"`
	ObjectiveID       int64  `json:"objective_id,omitempty"`
	StyleID           int64  `json:"style_id,omitempty"`
	PostObjective     string `json:"post_objective,omitempty"`
	PostStyle         string `json:"post_style,omitempty"`
	PostID            int64  `json:"post_id,omitempty"`
	PreviousImagePath string `json:"previous_image_path,omitempty"`
	ColorPalette      string `json:"color_palette,omitempty"`
}

// ContentResult is what generate and regenerate return.
type ContentResult struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	PostID   int64  `json:"post_id"`
}

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
)

// Post is a persisted generation, as listed by the history browser.
type Post struct {
	ID                   int64      `json:"id"`
	ClientID             int64      `json:"client_id"`
	CompanyID            int64      `json:"company_id,omitempty"`
	Title                string     `json:"title,omitempty"`
	Subtitle             string     `json:"subtitle,omitempty"`
	Content              string     `json:"content,omitempty"`
	ObjectiveID          int64      `json:"objective_id"`
	Objective            string     `json:"objective,omitempty"`
	ObjectiveDescription string     `json:"objective_description,omitempty"`
	StyleID              int64      `json:"style_id"`
	Style                string     `json:"style,omitempty"`
	StyleDescription     string     `json:"style_description,omitempty"`
	ImageURL             string     `json:"image_url,omitempty"`
	TemplateID           int64      `json:"template_id,omitempty"`
	Status               PostStatus `json:"status"`
	Platform             string     `json:"platform,omitempty"`
	ScheduledFor         string     `json:"scheduled_for,omitempty"`
	PublishedAt          string     `json:"published_at,omitempty"`
	PostURL              string     `json:"post_url,omitempty"`
	IsVariation          bool       `json:"is_variation,omitempty"`
	ParentPostID         int64      `json:"parent_post_id,omitempty"`
	GenerationType       string     `json:"generation_type,omitempty"`
	MainImagePath        string     `json:"main_image_path,omitempty"`
	CreatedAt            string     `json:"created_at"`
	UpdatedAt            string     `json:"updated_at"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

type PostPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// PostFilter narrows the history listing. Empty fields are not sent.
type PostFilter struct {
	Status    string
	Platform  string
	Objective string
	Style     string
	Search    string
	StartDate string
	EndDate   string
	SortBy    string
	SortOrder string // asc or desc
	Page      int
	PerPage   int
}

type BrandColors struct {
	Primary    string `json:"primary,omitempty"`
	Secondary  string `json:"secondary,omitempty"`
	Accent     string `json:"accent,omitempty"`
	Background string `json:"background,omitempty"`
	Text       string `json:"text,omitempty"`
}

// CompanyInfo is the business profile the backend uses as generation context.
type CompanyInfo struct {
	ID                    int64        `json:"id"`
	ClientID              int64        `json:"client_id"`
	CompanyName           string       `json:"company_name"`
	BusinessDescription   string       `json:"business_description,omitempty"`
	Address               string       `json:"address,omitempty"`
	Phone                 string       `json:"phone,omitempty"`
	Website               string       `json:"website,omitempty"`
	Email                 string       `json:"email,omitempty"`
	Hashtags              string       `json:"hashtags,omitempty"`
	LogoPath              string       `json:"logo_path,omitempty"`
	BrandColors           *BrandColors `json:"brand_colors,omitempty"`
	TemplateStyle         string       `json:"template_style,omitempty"`
	BusinessType          string       `json:"business_type,omitempty"`
	PhotographyStyle      string       `json:"photography_style,omitempty"`
	BrandPersonality      string       `json:"brand_personality,omitempty"`
	TargetAudienceDetails string       `json:"target_audience_details,omitempty"`
	VisualReferences      string       `json:"visual_references,omitempty"`
	CreatedAt             string       `json:"created_at,omitempty"`
	UpdatedAt             string       `json:"updated_at,omitempty"`
}

// CompanyInfoInput is used for both create and update; empty fields are not
// sent, so an update only touches what is set.
type CompanyInfoInput struct {
	CompanyName           string       `json:"company_name,omitempty"`
	BusinessDescription   string       `json:"business_description,omitempty"`
	Address               string       `json:"address,omitempty"`
	Phone                 string       `json:"phone,omitempty"`
	Website               string       `json:"website,omitempty"`
	Email                 string       `json:"email,omitempty"`
	Hashtags              string       `json:"hashtags,omitempty"`
	LogoPath              string       `json:"logo_path,omitempty"`
	BrandColors           *BrandColors `json:"brand_colors,omitempty"`
	TemplateStyle         string       `json:"template_style,omitempty"`
	BusinessType          string       `json:"business_type,omitempty"`
	PhotographyStyle      string       `json:"photography_style,omitempty"`
	BrandPersonality      string       `json:"brand_personality,omitempty"`
	TargetAudienceDetails string       `json:"target_audience_details,omitempty"`
	VisualReferences      string       `json:"visual_references,omitempty"`
}

// ImageTemplate is an uploaded background the backend composites posts onto.
type ImageTemplate struct {
	ID           int64  `json:"id"`
	ClientID     int64  `json:"client_id"`
	TemplateName string `json:"template_name"`
	StoragePath  string `json:"storage_path"`
	CreatedAt    string `json:"created_at,omitempty"`
}

type ImageTemplateInput struct {
	TemplateName string `json:"template_name,omitempty"`
	StoragePath  string `json:"storage_path,omitempty"`
}

type UploadResult struct {
	StoragePath string `json:"storage_path"`
}
