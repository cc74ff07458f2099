/*
DESCRIPTION
  bridge.go converts between a timeline of metadata.Record values and the
  JSON Document schema, including the whole-object-equality scene break
  detection the reference encoder uses.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package jsonmodel

import (
	"reflect"

	"github.com/ausocean/hdr10plus/metadata"
	"github.com/pkg/errors"
)

// ProfileMismatchError reports that a timeline's records are not all
// Profile A or all Profile B (a mix of profiles, or any N/A record), which
// FromRecords does not represent as a single Document.
type ProfileMismatchError struct{}

func (e *ProfileMismatchError) Error() string {
	return "jsonmodel: timeline records are not all profile A or all profile B"
}

// FromRecords builds a Document from an ordered timeline of records,
// matching generate_json/json_list of the reference JSON bridge: the
// timeline's overall profile is "A" or "B" only if every record agrees,
// otherwise building fails with ProfileMismatchError.
func FromRecords(records []*metadata.Record, tool, toolVersion string) (*Document, error) {
	if len(records) == 0 {
		return nil, errors.New("jsonmodel: cannot build a document from zero records")
	}

	profile, err := timelineProfile(records)
	if err != nil {
		return nil, err
	}

	frames := make([]Frame, len(records))
	for i, rec := range records {
		frames[i] = frameFromRecord(rec, profile)
	}
	computeSceneInformation(profile, frames)

	return &Document{
		Info: Info{
			Profile: string(profile),
			Version: itoaVersion(records[0].ApplicationVersion),
		},
		SceneInfo:        frames,
		SceneInfoSummary: summarizeScenes(frames),
		ToolInfo:         ToolInfo{Tool: tool, Version: toolVersion},
	}, nil
}

func timelineProfile(records []*metadata.Record) (metadata.Profile, error) {
	allB, allA := true, true
	for _, rec := range records {
		p := rec.Profile()
		if p != metadata.ProfileB {
			allB = false
		}
		if p != metadata.ProfileA {
			allA = false
		}
	}
	switch {
	case allB:
		return metadata.ProfileB, nil
	case allA:
		return metadata.ProfileA, nil
	default:
		return metadata.ProfileNA, &ProfileMismatchError{}
	}
}

func frameFromRecord(rec *metadata.Record, profile metadata.Profile) Frame {
	f := Frame{
		LuminanceParameters: LuminanceParameters{
			AverageRGB: rec.AverageMaxRgb,
			LuminanceDistributions: LuminanceDistributions{
				DistributionIndex:  distributionIndexes(rec.DistributionMaxRgb),
				DistributionValues: distributionValues(rec.DistributionMaxRgb),
			},
			MaxScl: append([]uint32{}, rec.MaxScl[:]...),
		},
		NumberOfWindows:                       rec.NumWindows,
		TargetedSystemDisplayMaximumLuminance: rec.TargetedSystemDisplayMaximumLuminance,
	}
	if profile == metadata.ProfileB && rec.BezierCurve != nil {
		f.BezierCurveData = &BezierCurveData{
			Anchors:    append([]uint16{}, rec.BezierCurve.Anchors...),
			KneePointX: rec.BezierCurve.KneePointX,
			KneePointY: rec.BezierCurve.KneePointY,
		}
	}
	return f
}

func distributionIndexes(list []metadata.DistributionMaxRgb) []uint8 {
	out := make([]uint8, len(list))
	for i, d := range list {
		out[i] = d.Percentage
	}
	return out
}

func distributionValues(list []metadata.DistributionMaxRgb) []uint32 {
	out := make([]uint32, len(list))
	for i, d := range list {
		out[i] = d.Percentile
	}
	return out
}

func itoaVersion(v uint8) string {
	// Matches the reference encoder's "{application_version}.0" scheme.
	digits := "0123456789"
	if v < 10 {
		return string(digits[v]) + ".0"
	}
	// application_version is always 1 for Application 4 Version 1 streams;
	// this branch only guards against a malformed record.
	hi, lo := v/10, v%10
	return string(digits[hi]) + string(digits[lo]) + ".0"
}

// computeSceneInformation assigns SceneFrameIndex/SceneID/SequenceFrameIndex
// in place, starting a new scene whenever a frame differs from its
// predecessor in BezierCurveData (Profile B only), LuminanceParameters,
// NumberOfWindows or TargetedSystemDisplayMaximumLuminance — a whole-object
// equality check on exactly those fields, matching
// compute_scene_information in the reference bridge.
func computeSceneInformation(profile metadata.Profile, frames []Frame) {
	sceneFrameIndex := 0
	sceneID := 0
	for i := range frames {
		if i > 0 {
			prev, cur := frames[i-1], frames[i]
			differentBezier := profile == metadata.ProfileB &&
				!reflect.DeepEqual(prev.BezierCurveData, cur.BezierCurveData)
			differentLuminance := !reflect.DeepEqual(prev.LuminanceParameters, cur.LuminanceParameters)
			differentWindows := prev.NumberOfWindows != cur.NumberOfWindows
			differentTarget := prev.TargetedSystemDisplayMaximumLuminance != cur.TargetedSystemDisplayMaximumLuminance

			if differentBezier || differentLuminance || differentWindows || differentTarget {
				sceneID++
				sceneFrameIndex = 0
			}
		}
		frames[i].SceneFrameIndex = sceneFrameIndex
		frames[i].SceneID = sceneID
		frames[i].SequenceFrameIndex = i
		sceneFrameIndex++
	}
}

func summarizeScenes(frames []Frame) SceneInfoSummary {
	var firstFrames []int
	for _, f := range frames {
		if f.SceneFrameIndex == 0 {
			firstFrames = append(firstFrames, f.SequenceFrameIndex)
		}
	}
	lengths := make([]int, len(firstFrames))
	for i := range firstFrames {
		if i < len(firstFrames)-1 {
			lengths[i] = firstFrames[i+1] - firstFrames[i]
		} else {
			lengths[i] = len(frames) - firstFrames[i]
		}
	}
	return SceneInfoSummary{SceneFirstFrameIndex: firstFrames, SceneFrameNumbers: lengths}
}

// ToRecords converts a Document's timeline back into metadata.Record
// values, matching TryFrom<&Hdr10PlusJsonMetadata> of the reference
// bridge: the ITU-T T.35 identification codes and Application 4 Version 1
// constants are fixed, not read from JSON, and tone_mapping_flag is
// derived from the presence of BezierCurveData.
func ToRecords(doc *Document) ([]*metadata.Record, error) {
	out := make([]*metadata.Record, len(doc.SceneInfo))
	for i, f := range doc.SceneInfo {
		rec, err := recordFromFrame(f)
		if err != nil {
			return nil, errors.Wrapf(err, "jsonmodel: frame %d", i)
		}
		out[i] = rec
	}
	return out, nil
}

func recordFromFrame(f Frame) (*metadata.Record, error) {
	lp := f.LuminanceParameters
	dists := lp.LuminanceDistributions

	if len(lp.MaxScl) != 3 {
		return nil, errors.New("MaxScl must contain exactly 3 elements")
	}
	if len(dists.DistributionIndex) != len(dists.DistributionValues) {
		return nil, errors.New("DistributionIndex and DistributionValues sizes don't match")
	}
	if len(dists.DistributionIndex) > 10 {
		return nil, errors.New("DistributionIndex size must be at most 10")
	}

	dm := make([]metadata.DistributionMaxRgb, len(dists.DistributionIndex))
	for i := range dm {
		dm[i] = metadata.DistributionMaxRgb{
			Percentage: dists.DistributionIndex[i],
			Percentile: dists.DistributionValues[i],
		}
	}

	rec := &metadata.Record{
		ItuTT35CountryCode:                    0xB5,
		ItuTT35TerminalProviderCode:           0x3C,
		ItuTT35TerminalProviderOrientedCode:   1,
		ApplicationIdentifier:                 4,
		ApplicationVersion:                    1,
		NumWindows:                            f.NumberOfWindows,
		TargetedSystemDisplayMaximumLuminance: f.TargetedSystemDisplayMaximumLuminance,
		MaxScl:                                [3]uint32{lp.MaxScl[0], lp.MaxScl[1], lp.MaxScl[2]},
		AverageMaxRgb:                         lp.AverageRGB,
		NumDistributionMaxRgbPercentiles:      uint8(len(dists.DistributionIndex)),
		DistributionMaxRgb:                    dm,
		FractionBrightPixels:                  0,
	}

	if f.BezierCurveData != nil {
		rec.ToneMappingFlag = true
		rec.BezierCurve = &metadata.BezierCurve{
			KneePointX: f.BezierCurveData.KneePointX,
			KneePointY: f.BezierCurveData.KneePointY,
			NumAnchors: uint8(len(f.BezierCurveData.Anchors)),
			Anchors:    append([]uint16{}, f.BezierCurveData.Anchors...),
		}
	}

	rec.SetProfile()
	return rec, nil
}
