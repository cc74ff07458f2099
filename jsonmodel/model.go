/*
DESCRIPTION
  model.go defines the JSON timeline schema exchanged by the extract,
  inject and editor commands: one Frame per metadata record, plus
  the document-level JSONInfo/SceneInfoSummary/ToolInfo wrapper.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package jsonmodel bridges between metadata.Record and the JSON timeline
// document format used to extract, inspect and re-inject ST-2094-40
// dynamic metadata.
package jsonmodel

// Document is the top-level JSON timeline document.
type Document struct {
	Info             Info             `json:"JSONInfo"`
	SceneInfo        []Frame          `json:"SceneInfo"`
	SceneInfoSummary SceneInfoSummary `json:"SceneInfoSummary"`
	ToolInfo         ToolInfo         `json:"ToolInfo"`
}

// Info records the timeline's overall HDR10+ profile and the application
// version the records were encoded against.
type Info struct {
	Profile string `json:"HDR10plusProfile"`
	Version string `json:"Version"`
}

// ToolInfo identifies the tool that produced the document.
type ToolInfo struct {
	Tool    string `json:"Tool"`
	Version string `json:"Version"`
}

// SceneInfoSummary gives, for each detected scene in order, the sequence
// index of its first frame and its length in frames.
type SceneInfoSummary struct {
	SceneFirstFrameIndex []int `json:"SceneFirstFrameIndex"`
	SceneFrameNumbers    []int `json:"SceneFrameNumbers"`
}

// Frame is one frame's worth of dynamic metadata in the JSON timeline.
// BezierCurveData is omitted entirely for Profile A frames and required
// for Profile B.
type Frame struct {
	BezierCurveData               *BezierCurveData   `json:"BezierCurveData,omitempty"`
	LuminanceParameters           LuminanceParameters `json:"LuminanceParameters"`
	NumberOfWindows                uint8              `json:"NumberOfWindows"`
	TargetedSystemDisplayMaximumLuminance uint32      `json:"TargetedSystemDisplayMaximumLuminance"`

	SceneFrameIndex    int `json:"SceneFrameIndex"`
	SceneID            int `json:"SceneId"`
	SequenceFrameIndex int `json:"SequenceFrameIndex"`
}

// BezierCurveData is the Profile B tone-mapping curve.
type BezierCurveData struct {
	Anchors    []uint16 `json:"Anchors"`
	KneePointX uint16   `json:"KneePointX"`
	KneePointY uint16   `json:"KneePointY"`
}

// LuminanceParameters carries the MaxRGB statistics of a frame.
type LuminanceParameters struct {
	AverageRGB              uint32                  `json:"AverageRGB"`
	LuminanceDistributions  LuminanceDistributions  `json:"LuminanceDistributions"`
	MaxScl                  []uint32                `json:"MaxScl"`
}

// LuminanceDistributions is the percentile/value distribution of MaxRGB.
type LuminanceDistributions struct {
	DistributionIndex  []uint8  `json:"DistributionIndex"`
	DistributionValues []uint32 `json:"DistributionValues"`
}
