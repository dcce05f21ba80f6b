package model

// UnspecifiedSpecialty is shown for doctors without a declared specialty.
const UnspecifiedSpecialty = "Especialidade não informada"

func ToDoctorViewModel(a Account) Doctor {
	specialty := UnspecifiedSpecialty
	if a.Role == RoleDoctor && a.Specialty != nil {
		specialty = *a.Specialty
	}
	return Doctor{
		ID:        a.ID,
		Name:      a.Name,
		Specialty: specialty,
		Image:     a.Image,
	}
}

// ToDoctorViewModels maps every account, keeping order.
func ToDoctorViewModels(accounts []Account) []Doctor {
	out := make([]Doctor, len(accounts))
	for i := range accounts {
		out[i] = ToDoctorViewModel(accounts[i])
	}
	return out
}
