package entities

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	pkgerrors "audiohub-backend/pkg/errors"
	"audiohub-backend/pkg/utils"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User account statuses
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

const MinUsernameLength = 3

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NotificationPreferences controls per-channel notification delivery.
type NotificationPreferences struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	Sound bool `json:"sound"`
}

// AudioPreferences holds per-user audio defaults.
type AudioPreferences struct {
	DefaultVolume    float64 `json:"default_volume"`
	AutoEQ           bool    `json:"auto_eq"`
	PreferredQuality string  `json:"preferred_quality"`
}

// Preferences holds user-tunable application settings.
type Preferences struct {
	Theme         string                  `json:"theme"`
	Language      string                  `json:"language"`
	Notifications NotificationPreferences `json:"notifications"`
	Audio         AudioPreferences        `json:"audio"`
}

// SocialLinks holds optional links shown on the public profile.
type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// ProfileInfo holds the free-form profile section.
type ProfileInfo struct {
	Bio         string      `json:"bio,omitempty"`
	Location    string      `json:"location,omitempty"`
	Website     string      `json:"website,omitempty"`
	SocialLinks SocialLinks `json:"social_links"`
}

// Stats tracks account activity counters.
type Stats struct {
	DevicesCount     int    `json:"devices_count"`
	PresetsCount     int    `json:"presets_count"`
	LastLogin        string `json:"last_login,omitempty"`
	LoginCount       int    `json:"login_count"`
	TotalSessionTime int    `json:"total_session_time"`
}

// User is an account backed by the external identity provider. The
// identity provider owns credentials; this record owns everything else.
type User struct {
	UserID        string      `json:"user_id"`
	CognitoID     string      `json:"cognito_id,omitempty"`
	Email         string      `json:"email"`
	Username      string      `json:"username"`
	FullName      string      `json:"full_name"`
	Role          string      `json:"role"`
	AvatarURL     string      `json:"avatar_url,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Preferences   Preferences `json:"preferences"`
	Profile       ProfileInfo `json:"profile"`
	Stats         Stats       `json:"stats"`
	Status        string      `json:"status"`
	EmailVerified bool        `json:"email_verified"`
	PhoneVerified bool        `json:"phone_verified"`
	CreatedAt     string      `json:"created_at"`
	UpdatedAt     string      `json:"updated_at"`
	LastActiveAt  string      `json:"last_active_at"`
}

// UserPatch carries a partial profile update. Only the fields listed
// here are user-mutable; role, email, status and stats are managed
// through dedicated paths.
type UserPatch struct {
	FullName    *string
	AvatarURL   *string
	Phone       *string
	Preferences *Preferences
	Profile     *ProfileInfo
}

// StatsPatch carries a partial stats update.
type StatsPatch struct {
	DevicesCount     *int
	PresetsCount     *int
	TotalSessionTime *int
}

// DefaultPreferences returns the settings new accounts start with.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:    "dark",
		Language: "en-US",
		Notifications: NotificationPreferences{
			Email: true,
			Push:  true,
			Sound: true,
		},
		Audio: AudioPreferences{
			DefaultVolume:    0.7,
			AutoEQ:           true,
			PreferredQuality: "high",
		},
	}
}

// NewUser creates a validated user with default preferences.
func NewUser(email, username, fullName, role, cognitoID string) (*User, error) {
	now := utils.NowRFC3339()
	user := &User{
		UserID:       uuid.New().String(),
		CognitoID:    cognitoID,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     strings.TrimSpace(username),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		Preferences:  DefaultPreferences(),
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastActiveAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// IdentityAttributes is the subset of identity-provider data needed to
// hydrate a user record.
type IdentityAttributes struct {
	IdentityID    string
	Email         string
	Name          string
	Role          string
	EmailVerified bool
	Confirmed     bool
}

// FromIdentity builds a user from identity-provider attributes. Used
// when a login arrives for an identity that has no local record yet.
func FromIdentity(attrs IdentityAttributes) (*User, error) {
	role := attrs.Role
	if role == "" {
		role = RoleUser
	}
	username := attrs.Email
	if at := strings.Index(username, "@"); at > 0 {
		username = username[:at]
	}

	user, err := NewUser(attrs.Email, username, attrs.Name, role, attrs.IdentityID)
	if err != nil {
		return nil, err
	}
	user.EmailVerified = attrs.EmailVerified
	if !attrs.Confirmed {
		user.Status = StatusInactive
	}
	return user, nil
}

// Validate checks structural invariants.
func (u *User) Validate() error {
	var fields []string

	if u.Email == "" || !emailPattern.MatchString(u.Email) {
		fields = append(fields, "invalid email address format")
	}
	if len(u.Username) < MinUsernameLength {
		fields = append(fields, "username must be at least 3 characters long")
	}
	if strings.TrimSpace(u.FullName) == "" {
		fields = append(fields, "full name cannot be empty")
	}
	if u.Role != RoleAdmin && u.Role != RoleUser {
		fields = append(fields, "role must be either admin or user")
	}
	switch u.Status {
	case StatusActive, StatusInactive, StatusSuspended:
	default:
		fields = append(fields, "invalid user status")
	}
	if u.Preferences.Audio.DefaultVolume < 0 || u.Preferences.Audio.DefaultVolume > 1 {
		fields = append(fields, "default volume must be between 0 and 1")
	}

	if len(fields) > 0 {
		return pkgerrors.NewValidationError("Invalid user").
			WithCode("VALIDATION_ERROR").
			WithFieldErrors(fields)
	}
	return nil
}

// Update applies a partial profile update. Fields outside the patch
// type cannot be changed through this path.
func (u *User) Update(patch UserPatch) error {
	if patch.FullName != nil {
		u.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Preferences != nil {
		u.Preferences = *patch.Preferences
	}
	if patch.Profile != nil {
		u.Profile = *patch.Profile
	}
	u.UpdatedAt = utils.NowRFC3339()
	return u.Validate()
}

// UpdateStats applies a partial stats update.
func (u *User) UpdateStats(patch StatsPatch) {
	if patch.DevicesCount != nil {
		u.Stats.DevicesCount = *patch.DevicesCount
	}
	if patch.PresetsCount != nil {
		u.Stats.PresetsCount = *patch.PresetsCount
	}
	if patch.TotalSessionTime != nil {
		u.Stats.TotalSessionTime = *patch.TotalSessionTime
	}
	u.UpdatedAt = utils.NowRFC3339()
}

// RecordLogin refreshes activity timestamps and the login counter.
func (u *User) RecordLogin() {
	now := utils.NowRFC3339()
	u.LastActiveAt = now
	u.Stats.LastLogin = now
	u.Stats.LoginCount++
}

// IsAdmin reports whether the user is an administrator.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive reports whether the account is active.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// APIView is the response shape for profile endpoints. Private fields
// are included only for the owner and admins.
type APIView struct {
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	FullName      string       `json:"fullName"`
	Role          string       `json:"role"`
	AvatarURL     string       `json:"avatarUrl,omitempty"`
	Profile       ProfileInfo  `json:"profile"`
	Stats         APIStats     `json:"stats"`
	Status        string       `json:"status"`
	CreatedAt     string       `json:"createdAt"`
	LastActiveAt  string       `json:"lastActiveAt"`
	Email         string       `json:"email,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	Preferences   *Preferences `json:"preferences,omitempty"`
	EmailVerified *bool        `json:"emailVerified,omitempty"`
	PhoneVerified *bool        `json:"phoneVerified,omitempty"`
	UpdatedAt     string       `json:"updatedAt,omitempty"`
}

// APIStats is the stats subset exposed over the API.
type APIStats struct {
	DevicesCount int    `json:"devicesCount"`
	PresetsCount int    `json:"presetsCount"`
	LastLogin    string `json:"lastLogin,omitempty"`
}

// ToAPIView converts the user to its API response shape.
func (u *User) ToAPIView(includePrivate bool) APIView {
	view := APIView{
		ID:        u.UserID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		Profile:   u.Profile,
		Stats: APIStats{
			DevicesCount: u.Stats.DevicesCount,
			PresetsCount: u.Stats.PresetsCount,
			LastLogin:    u.Stats.LastLogin,
		},
		Status:       u.Status,
		CreatedAt:    u.CreatedAt,
		LastActiveAt: u.LastActiveAt,
	}

	if includePrivate {
		view.Email = u.Email
		view.Phone = u.Phone
		prefs := u.Preferences
		view.Preferences = &prefs
		emailVerified := u.EmailVerified
		phoneVerified := u.PhoneVerified
		view.EmailVerified = &emailVerified
		view.PhoneVerified = &phoneVerified
		view.UpdatedAt = u.UpdatedAt
	}

	return view
}

// PublicProfile is the minimal shape shown to other users.
type PublicProfile struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	FullName  string   `json:"fullName"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Location  string   `json:"location,omitempty"`
	Stats     APIStats `json:"stats"`
	JoinedAt  string   `json:"joinedAt"`
}

// ToPublicProfile converts the user to its public profile shape.
func (u *User) ToPublicProfile() PublicProfile {
	return PublicProfile{
		ID:        u.UserID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Bio:       u.Profile.Bio,
		Location:  u.Profile.Location,
		Stats: APIStats{
			DevicesCount: u.Stats.DevicesCount,
			PresetsCount: u.Stats.PresetsCount,
		},
		JoinedAt: u.CreatedAt,
	}
}
