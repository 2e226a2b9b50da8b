package utils

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"tourguard/models"
)

// AIClient calls the prediction service: location risk on GET /predict and
// the on-device sensor classifiers on POST /check_activity and /check_audio.
type AIClient struct {
	client *resty.Client
}

type riskPrediction struct {
	PredictedRiskScore *float64 `json:"predicted_risk_score"`
	Error              string   `json:"error"`
}

type sensorPayload struct {
	Data interface{} `json:"data"`
}

type activityPrediction struct {
	PredictedActivity string `json:"predicted_activity"`
	Error             string `json:"error"`
}

type keywordPrediction struct {
	KeywordDetected *bool   `json:"keyword_detected"`
	Confidence      float64 `json:"confidence"`
	Error           string  `json:"error"`
}

func NewAIClient(baseURL string, timeout time.Duration) *AIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &AIClient{client: client}
}

func (rc *AIClient) PredictRisk(ctx context.Context, coordinate models.Coordinate, year int) (float64, error) {
	var result riskPrediction
	resp, err := rc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":  strconv.FormatFloat(coordinate.Latitude, 'f', -1, 64),
			"lon":  strconv.FormatFloat(coordinate.Longitude, 'f', -1, 64),
			"year": strconv.Itoa(year),
		}).
		SetResult(&result).
		SetError(&result).
		Get("/predict")
	if err != nil {
		return 0, fmt.Errorf("risk prediction request failed: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("risk prediction failed with status %d: %s", resp.StatusCode(), result.Error)
	}
	if result.PredictedRiskScore == nil {
		return 0, fmt.Errorf("risk prediction response missing score")
	}

	return *result.PredictedRiskScore, nil
}

// ClassifyActivity labels one window of motion samples.
func (rc *AIClient) ClassifyActivity(ctx context.Context, window [][]float64) (string, error) {
	var result activityPrediction
	resp, err := rc.client.R().
		SetContext(ctx).
		SetBody(sensorPayload{Data: window}).
		SetResult(&result).
		SetError(&result).
		Post("/check_activity")
	if err != nil {
		return "", fmt.Errorf("activity classification request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("activity classification failed with status %d: %s", resp.StatusCode(), result.Error)
	}
	if result.PredictedActivity == "" {
		return "", fmt.Errorf("activity classification response missing label")
	}

	return result.PredictedActivity, nil
}

// DetectKeyword runs keyword spotting over 16 kHz mono audio.
func (rc *AIClient) DetectKeyword(ctx context.Context, audio []float64) (bool, float64, error) {
	var result keywordPrediction
	resp, err := rc.client.R().
		SetContext(ctx).
		SetBody(sensorPayload{Data: audio}).
		SetResult(&result).
		SetError(&result).
		Post("/check_audio")
	if err != nil {
		return false, 0, fmt.Errorf("keyword detection request failed: %w", err)
	}
	if resp.IsError() {
		return false, 0, fmt.Errorf("keyword detection failed with status %d: %s", resp.StatusCode(), result.Error)
	}
	if result.KeywordDetected == nil {
		return false, 0, fmt.Errorf("keyword detection response missing result")
	}

	return *result.KeywordDetected, result.Confidence, nil
}
