// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package kind

import "math"

// Builtin kind names.
const (
	ImageKind                       = "image"
	VideoMetadataKind               = "video_metadata"
	ObjectDetectionPredictionKind   = "object_detection_prediction"
	InstanceSegmentationKind        = "instance_segmentation_prediction"
	KeypointDetectionPredictionKind = "keypoint_detection_prediction"
	ClassificationPredictionKind    = "classification_prediction"
	LanguageModelOutputKind         = "language_model_output"
	FloatZeroToOneKind              = "float_zero_to_one"
	FloatKind                       = "float"
	IntegerKind                     = "integer"
	BooleanKind                     = "boolean"
	StringKind                      = "string"
	DictionaryKind                  = "dictionary"
	ListOfValuesKind                = "list_of_values"
	ModelIDKind                     = "roboflow_model_id"
	ParentIDKind                    = "parent_id"
	BytesKind                       = "bytes"
)

// Builtin returns the kinds every registry created by Default starts with.
func Builtin() []Kind {
	return []Kind{
		{Name: Wildcard, Description: "Equivalent of any element"},
		{Name: ImageKind, Description: "Image in workflows", Validate: isImage},
		{Name: VideoMetadataKind, Description: "Video image metadata", Validate: isMap},
		{Name: ObjectDetectionPredictionKind, Description: "Prediction with detected bounding boxes in form of sv.Detections(...) object"},
		{Name: InstanceSegmentationKind, Description: "Prediction with detected bounding boxes and segmentation masks"},
		{Name: KeypointDetectionPredictionKind, Description: "Prediction with detected bounding boxes and detected keypoints"},
		{Name: ClassificationPredictionKind, Description: "Predictions from classifier", Validate: isMap},
		{Name: LanguageModelOutputKind, Description: "LLM / VLM output", Validate: isString},
		{Name: FloatZeroToOneKind, Description: "float value in range [0.0, 1.0]", Validate: isZeroToOne},
		{Name: FloatKind, Description: "Float value", Validate: isNumber},
		{Name: IntegerKind, Description: "Integer value", Validate: isInteger},
		{Name: BooleanKind, Description: "Boolean flag", Validate: isBool},
		{Name: StringKind, Description: "String value", Validate: isString},
		{Name: DictionaryKind, Description: "Dictionary", Validate: isMap},
		{Name: ListOfValuesKind, Description: "List of values of any type", Validate: isList},
		{Name: ModelIDKind, Description: "Roboflow model id", Validate: isString},
		{Name: ParentIDKind, Description: "Identifier of parent for step output", Validate: isString},
		{Name: BytesKind, Description: "This kind represent bytes", Validate: isBytes},
	}
}

// Number converts any Go numeric value to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func isNumber(v any) bool {
	_, ok := Number(v)
	return ok
}

func isInteger(v any) bool {
	n, ok := Number(v)
	return ok && n == math.Trunc(n)
}

func isZeroToOne(v any) bool {
	n, ok := Number(v)
	return ok && n >= 0 && n <= 1
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isMap(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

func isBytes(v any) bool {
	_, ok := v.([]byte)
	return ok
}
