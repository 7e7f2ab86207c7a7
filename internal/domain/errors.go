package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product id is not in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrScanNotFound is returned when no scan matches the requested id
	ErrScanNotFound = errors.New("scan not found")

	// ErrCompareCapacity is returned when a third product is added to the comparison set
	ErrCompareCapacity = errors.New("you can compare only 2 products")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidSlot is returned for routine slots other than AM and PM
	ErrInvalidSlot = errors.New("routine slot must be AM or PM")

	// ErrNoFaceDetected is returned when face detection ran and found no face
	ErrNoFaceDetected = errors.New("no face detected. Retake with your face inside the guide")

	// ErrMultipleFaces is returned when face detection found more than one face
	ErrMultipleFaces = errors.New("multiple faces detected. Please scan with one face only")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrStateNotFound is returned when a state key has never been written
	ErrStateNotFound = errors.New("state not found")

	// ErrStoreUnavailable is returned when the state store cannot be reached
	ErrStoreUnavailable = errors.New("state store unavailable")

	// ErrAnalyzerDisabled is returned when no skin analyzer is configured
	ErrAnalyzerDisabled = errors.New("skin analyzer not configured")

	// ErrAnalyzerFailure is returned when the skin analyzer request fails
	ErrAnalyzerFailure = errors.New("skin analyzer request failed")

	// ErrInvalidCatalog is returned when catalog data violates product invariants
	ErrInvalidCatalog = errors.New("invalid catalog data")
)
