// Package ocr extracts design annotations from drawing photos with
// Tesseract and hands the raw text to the notation parser.
package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Engine wraps a Tesseract client configured for structural drawing text.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates an OCR engine. languages is a Tesseract language
// string such as "chi_sim+eng"; drawings mix Chinese member labels with
// Latin rebar notation.
func NewEngine(languages string) (*Engine, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(languages); err != nil {
		client.Close()
		return nil, fmt.Errorf("set OCR language: %w", err)
	}

	// Rebar callouts like 4C22 are not dictionary words; stop Tesseract
	// from "correcting" them.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetVariable("language_model_penalty_non_dict_word", "0")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// RecognizeText runs OCR over an encoded image (JPEG/PNG bytes) and
// returns the raw recognized text.
func (e *Engine) RecognizeText(imageData []byte) (string, error) {
	processed, err := preprocess(imageData)
	if err != nil {
		return "", err
	}

	if err := e.client.SetImageFromBytes(processed); err != nil {
		return "", fmt.Errorf("set OCR image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("run OCR: %w", err)
	}
	return text, nil
}

// preprocess converts the image to grayscale and applies Otsu
// binarization. Drawing photos have uneven lighting; a clean black and
// white image recognizes markedly better.
func preprocess(imageData []byte) ([]byte, error) {
	img, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("decode image: empty result")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, binary)
	if err != nil {
		return nil, fmt.Errorf("encode preprocessed image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
