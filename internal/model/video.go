package model

import "time"

// VideoAnalysisResult is the read-only output of the external video-analysis
// provider. The core consumes only the confidence score and coordinates.
type VideoAnalysisResult struct {
	Timestamp            time.Time `json:"timestamp"`
	Latitude             float64   `json:"latitude"`
	Longitude            float64   `json:"longitude"`
	Address              string    `json:"address,omitempty"`
	DistanceFromLastSeen float64   `json:"distance_from_last_seen"`
	VideoURL             string    `json:"video_url,omitempty"`
	ConfidenceScore      float64   `json:"confidence_score"`
	AIDescription        string    `json:"ai_description,omitempty"`
	CameraID             string    `json:"camera_id"`
	CameraType           string    `json:"camera_type,omitempty"`
}

// VideoAnalysisStats summarizes a video-analysis run.
type VideoAnalysisStats struct {
	TotalAnalyzed int `json:"total_analyzed"`
	MatchesFound  int `json:"matches_found"`
	NoPersonFound int `json:"no_person_found"`
	Errors        int `json:"errors"`
}
