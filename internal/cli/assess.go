package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/recommend"
	"github.com/veilmetrics/veil/internal/domain/risk"
)

var (
	assessRecommendations int
	assessCompact         bool
)

var assessCmd = &cobra.Command{
	Use:   "assess FILE",
	Short: "Score a single user profile from a JSON file",
	Long: `Reads a user profile with connections and activities from a JSON
file and prints the risk assessment without starting the server.

The input format matches the /api/v1/risk-score request body:

  {
    "user_data": {"user_id": "u1", "age": 30, "is_active": true},
    "connections": [{"platform": "facebook", "privacy_setting": "public", ...}],
    "activities": [{"content_type": "photo", "has_location": true, ...}]
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().IntVarP(&assessRecommendations, "recommendations", "r", 0,
		"also print up to N recommendations")
	assessCmd.Flags().BoolVar(&assessCompact, "compact", false,
		"print compact JSON instead of indented")
	rootCmd.AddCommand(assessCmd)
}

// assessInput mirrors the risk-score request body.
type assessInput struct {
	UserData struct {
		UserID   string `json:"user_id"`
		Age      int    `json:"age"`
		IsActive bool   `json:"is_active"`
	} `json:"user_data"`
	Connections []struct {
		Platform          string `json:"platform"`
		PrivacySetting    string `json:"privacy_setting"`
		ProfileVisibility string `json:"profile_visibility"`
		PostCount         int    `json:"post_count"`
		FollowerCount     int    `json:"follower_count"`
		IsActive          bool   `json:"is_active"`
		SharesLocation    bool   `json:"shares_location"`
		SharesContacts    bool   `json:"shares_contacts"`
	} `json:"connections"`
	Activities []struct {
		ContentType     string  `json:"content_type"`
		HasPersonalInfo bool    `json:"has_personal_info"`
		HasLocation     bool    `json:"has_location"`
		EngagementScore float64 `json:"engagement_score"`
	} `json:"activities"`
}

type assessOutput struct {
	UserID          string              `json:"user_id"`
	OverallScore    float64             `json:"overall_score"`
	Category        model.RiskCategory  `json:"category"`
	Breakdown       map[string]float64  `json:"breakdown"`
	TopRiskFactors  []string            `json:"top_risk_factors"`
	Recommendations []recommendationOut `json:"recommendations,omitempty"`
}

type recommendationOut struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Effort      string `json:"effort"`
	Priority    int    `json:"priority"`
	Platform    string `json:"platform"`
}

func runAssess(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var in assessInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	user := model.UserProfile{
		UserID:   in.UserData.UserID,
		Age:      in.UserData.Age,
		IsActive: in.UserData.IsActive,
	}

	connections := make([]model.ConnectionRecord, 0, len(in.Connections))
	for _, c := range in.Connections {
		connections = append(connections, model.ConnectionRecord{
			Platform:          model.ParsePlatform(c.Platform),
			PrivacySetting:    model.ParsePrivacySetting(c.PrivacySetting),
			ProfileVisibility: model.ParsePrivacySetting(c.ProfileVisibility),
			PostCount:         c.PostCount,
			FollowerCount:     c.FollowerCount,
			IsActive:          c.IsActive,
			SharesLocation:    c.SharesLocation,
			SharesContacts:    c.SharesContacts,
		})
	}

	activities := make([]model.ActivityRecord, 0, len(in.Activities))
	for _, a := range in.Activities {
		activities = append(activities, model.ActivityRecord{
			ContentType:     model.ContentType(a.ContentType),
			HasPersonalInfo: a.HasPersonalInfo,
			HasLocation:     a.HasLocation,
			EngagementScore: a.EngagementScore,
		})
	}

	assessment := risk.NewScorer().CalculateRiskScore(user, connections, activities)

	out := assessOutput{
		UserID:         user.UserID,
		OverallScore:   assessment.OverallScore,
		Category:       assessment.Category,
		Breakdown:      assessment.Breakdown,
		TopRiskFactors: assessment.TopRiskFactors,
	}
	if assessRecommendations > 0 {
		recs := recommend.NewEngine().GenerateRecommendations(
			assessment.OverallScore, connections, assessRecommendations)
		for _, rec := range recs {
			out.Recommendations = append(out.Recommendations, recommendationOut{
				ID:          rec.ID,
				Title:       rec.Title,
				Description: rec.Description,
				Impact:      string(rec.Impact),
				Effort:      string(rec.Effort),
				Priority:    rec.Priority,
				Platform:    rec.Platform,
			})
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !assessCompact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
