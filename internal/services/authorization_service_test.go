// internal/services/authorization_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/madatrans/license-backend/internal/apperrors"
	"github.com/madatrans/license-backend/internal/models"
	"github.com/madatrans/license-backend/internal/utils"
)

func TestRecordAuthorizationRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     RecordAuthorizationRequest
		wantErr bool
	}{
		{
			name: "both tests passed",
			req: RecordAuthorizationRequest{
				ExaminerName:      "R. Andriana",
				EyeTestResult:     testResult(models.TestResultPassed),
				DrivingTestResult: testResult(models.TestResultPassed),
			},
		},
		{
			name: "driving failed and flagged",
			req: RecordAuthorizationRequest{
				ExaminerName:      "R. Andriana",
				IsFailed:          true,
				EyeTestResult:     testResult(models.TestResultPassed),
				DrivingTestResult: testResult(models.TestResultFailed),
			},
		},
		{
			name: "absent",
			req: RecordAuthorizationRequest{
				ExaminerName: "R. Andriana",
				IsAbsent:     true,
			},
		},
		{
			name: "single restriction per group",
			req: RecordAuthorizationRequest{
				ExaminerName:                 "R. Andriana",
				EyeTestResult:                testResult(models.TestResultPassed),
				DrivingTestResult:            testResult(models.TestResultPassed),
				DriverRestrictionGlasses:    true,
				VehicleRestrictionAutomatic: true,
			},
		},
		{
			name: "two driver restriction flags",
			req: RecordAuthorizationRequest{
				ExaminerName:                    "R. Andriana",
				EyeTestResult:                   testResult(models.TestResultPassed),
				DrivingTestResult:               testResult(models.TestResultPassed),
				DriverRestrictionGlasses:        true,
				DriverRestrictionArtificialLimb: true,
			},
			wantErr: true,
		},
		{
			name: "two vehicle restriction flags",
			req: RecordAuthorizationRequest{
				ExaminerName:                "R. Andriana",
				EyeTestResult:               testResult(models.TestResultPassed),
				DrivingTestResult:           testResult(models.TestResultPassed),
				VehicleRestrictionAutomatic: true,
				VehicleRestrictionDisabled:  true,
			},
			wantErr: true,
		},
		{
			name: "absent and failed",
			req: RecordAuthorizationRequest{
				ExaminerName: "R. Andriana",
				IsAbsent:     true,
				IsFailed:     true,
			},
			wantErr: true,
		},
		{
			name: "absent with results",
			req: RecordAuthorizationRequest{
				ExaminerName:  "R. Andriana",
				IsAbsent:      true,
				EyeTestResult: testResult(models.TestResultPassed),
			},
			wantErr: true,
		},
		{
			name: "present without results",
			req: RecordAuthorizationRequest{
				ExaminerName: "R. Andriana",
			},
			wantErr: true,
		},
		{
			name: "flagged failed but both passed",
			req: RecordAuthorizationRequest{
				ExaminerName:      "R. Andriana",
				IsFailed:          true,
				EyeTestResult:     testResult(models.TestResultPassed),
				DrivingTestResult: testResult(models.TestResultPassed),
			},
			wantErr: true,
		},
		{
			name: "failed test without flag",
			req: RecordAuthorizationRequest{
				ExaminerName:      "R. Andriana",
				EyeTestResult:     testResult(models.TestResultFailed),
				DrivingTestResult: testResult(models.TestResultPassed),
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.validate()
			if tc.wantErr {
				assert.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecordAuthorizationRequestExaminerRequired(t *testing.T) {
	req := RecordAuthorizationRequest{
		ExaminerName:      "R. Andriana",
		EyeTestResult:     testResult(models.TestResultPassed),
		DrivingTestResult: testResult(models.TestResultPassed),
	}
	assert.Error(t, utils.ValidateStruct(&req), "examiner_id is required")

	req.ExaminerID = uuid.New()
	assert.NoError(t, utils.ValidateStruct(&req))
}
